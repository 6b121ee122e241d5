package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/janseva/go-queue-backend/internal/domain"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := tok.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func authRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Auth(testSecret))
	r.GET("/whoami", func(c *gin.Context) {
		actor, ok := ActorFrom(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": actor.ID, "role": actor.Role, "office_id": actor.OfficeID})
	})
	r.GET("/counter", RequireOfficial(), func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestAuth_ValidToken(t *testing.T) {
	r := authRouter(t)
	raw := signToken(t, jwt.MapClaims{
		"sub":       "user-1",
		"role":      "official",
		"office_id": "off-1",
		"exp":       time.Now().Add(time.Hour).Unix(),
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestAuth_QueryParamFallback(t *testing.T) {
	r := authRouter(t)
	raw := signToken(t, jwt.MapClaims{"sub": "user-1"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami?access_token="+raw, nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestAuth_Failures(t *testing.T) {
	r := authRouter(t)

	cases := []struct {
		name  string
		token string
	}{
		{"missing", ""},
		{"garbage", "not-a-jwt"},
		{"expired", signToken(t, jwt.MapClaims{"sub": "u", "exp": time.Now().Add(-time.Hour).Unix()})},
		{"no subject", signToken(t, jwt.MapClaims{"role": "citizen"})},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tc.token != "" {
				req.Header.Set("Authorization", "Bearer "+tc.token)
			}
			r.ServeHTTP(w, req)
			if w.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", w.Code)
			}
		})
	}
}

func TestAuth_RejectsWrongSigningMethod(t *testing.T) {
	r := authRouter(t)
	// alg=none style forgery
	tok := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "u"})
	raw, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestRequireOfficial(t *testing.T) {
	r := authRouter(t)

	citizenTok := signToken(t, jwt.MapClaims{"sub": "user-1"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/counter", nil)
	req.Header.Set("Authorization", "Bearer "+citizenTok)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("citizen on counter route: expected 403, got %d", w.Code)
	}

	officialTok := signToken(t, jwt.MapClaims{"sub": "off-user", "role": "official", "office_id": "off-1"})
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/counter", nil)
	req.Header.Set("Authorization", "Bearer "+officialTok)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("official on counter route: expected 200, got %d", w.Code)
	}
}

func TestAuth_DefaultsRoleToCitizen(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Auth(testSecret))
	var got domain.Actor
	r.GET("/x", func(c *gin.Context) {
		got, _ = ActorFrom(c)
		c.Status(http.StatusOK)
	})

	raw := signToken(t, jwt.MapClaims{"sub": "user-1"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	r.ServeHTTP(w, req)

	if got.Role != domain.RoleCitizen || got.ID != "user-1" {
		t.Fatalf("unexpected actor: %+v", got)
	}
}
