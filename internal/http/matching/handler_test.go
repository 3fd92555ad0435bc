package matching_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/tally/internal/auth"
	"github.com/MrJamesThe3rd/tally/internal/category"
	matchingHandler "github.com/MrJamesThe3rd/tally/internal/http/matching"
	"github.com/MrJamesThe3rd/tally/internal/matching"
)

var (
	userID     = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	categoryID = uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000001")
)

func newRouter(repo matching.Repository) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(auth.WithUserID(r.Context(), userID)))
		})
	})
	r.Route("/rules", matchingHandler.NewHandler(matching.NewService(repo)).Routes)

	return r
}

func TestHandler(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		target     string
		body       string
		setupMock  func(m *matching.MockRepository)
		wantStatus int
		wantBody   string
	}{
		{
			name:   "Learn",
			method: http.MethodPost,
			target: "/rules",
			body:   `{"pattern":"  continente ","category_id":"` + categoryID.String() + `"}`,
			setupMock: func(m *matching.MockRepository) {
				m.EXPECT().CreateRule(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, r *matching.Rule) error {
						assert.Equal(t, "continente", r.RawPattern)
						assert.Equal(t, userID, r.UserID)
						return nil
					})
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "LearnBlankPattern",
			method:     http.MethodPost,
			target:     "/rules",
			body:       `{"pattern":"  ","category_id":"` + categoryID.String() + `"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "LearnMissingCategory",
			method:     http.MethodPost,
			target:     "/rules",
			body:       `{"pattern":"uber"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "LearnForeignCategory",
			method: http.MethodPost,
			target: "/rules",
			body:   `{"pattern":"uber","category_id":"` + categoryID.String() + `"}`,
			setupMock: func(m *matching.MockRepository) {
				m.EXPECT().CreateRule(gomock.Any(), gomock.Any()).Return(category.ErrNotFound)
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name:   "SuggestMatch",
			method: http.MethodGet,
			target: "/rules/suggest?description=" + url.QueryEscape("CONTINENTE PORTO"),
			setupMock: func(m *matching.MockRepository) {
				m.EXPECT().FindMatch(gomock.Any(), userID, "CONTINENTE PORTO").
					Return(&matching.Rule{CategoryID: categoryID}, nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"description":"CONTINENTE PORTO","category_id":"` + categoryID.String() + `"}`,
		},
		{
			name:   "SuggestNoMatch",
			method: http.MethodGet,
			target: "/rules/suggest?description=UBER",
			setupMock: func(m *matching.MockRepository) {
				m.EXPECT().FindMatch(gomock.Any(), userID, "UBER").Return(nil, nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"description":"UBER","category_id":null}`,
		},
		{
			name:   "ListEmpty",
			method: http.MethodGet,
			target: "/rules",
			setupMock: func(m *matching.MockRepository) {
				m.EXPECT().ListRules(gomock.Any(), userID).Return(nil, nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   `[]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := matching.NewMockRepository(ctrl)

			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			rec := httptest.NewRecorder()
			newRouter(repo).ServeHTTP(rec, httptest.NewRequest(tt.method, tt.target, strings.NewReader(tt.body)))

			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())

			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}
