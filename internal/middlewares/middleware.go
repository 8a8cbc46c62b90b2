package middlewares

import (
	"context"
	"log"
	"net/http"
	"os"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vidtube/vidtube-server/internal/auth"
	"github.com/vidtube/vidtube-server/internal/models"
	"github.com/vidtube/vidtube-server/internal/utils"
)

type contextKey string

const UserContextKey contextKey = "user"

type MiddlewareHandler struct {
	Logger        *log.Logger
	Authenticator *auth.Authenticator
}

func NewMiddlewareHandler(logger *log.Logger, authenticator *auth.Authenticator) *MiddlewareHandler {
	return &MiddlewareHandler{
		Logger:        logger,
		Authenticator: authenticator,
	}
}

// Authenticate resolves the caller's identity from the bearer token and
// binds it to the request context. Every failure mode is a 401; ownership
// decisions happen later, in the handlers.
func (mh *MiddlewareHandler) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		header := r.Header.Get("Authorization")
		if header == "" {
			mh.Logger.Println("No Authorization header in request")
			utils.WriteError(w, http.StatusUnauthorized, "Not Authorized")
			return
		}

		tokenString, found := strings.CutPrefix(header, "Bearer ")
		if !found || tokenString == "" {
			mh.Logger.Println("Malformed Authorization header")
			utils.WriteError(w, http.StatusUnauthorized, "Not Authorized")
			return
		}

		claims, err := mh.Authenticator.VerifyToken(tokenString)
		if err != nil {
			mh.Logger.Println("Token verification failed:", err)
			utils.WriteError(w, http.StatusUnauthorized, "Not Authorized")
			return
		}

		userID, err := primitive.ObjectIDFromHex(claims.UID)
		if err != nil {
			mh.Logger.Println("Invalid user ID format in token:", err)
			utils.WriteError(w, http.StatusUnauthorized, "Not Authorized")
			return
		}

		user := &models.User{
			ID:       userID,
			Username: claims.Username,
		}

		ctx := context.WithValue(r.Context(), UserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (mh *MiddlewareHandler) Cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		if origin != "" && !isOriginAllowed(origin) {
			mh.Logger.Printf("Origin not allowed: %s", origin)
			utils.WriteError(w, http.StatusForbidden, "Origin not allowed")
			return
		}

		if origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		}
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (mh *MiddlewareHandler) RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mh.Logger.Printf("Request: %s %s | Origin: %s",
			r.Method, r.URL.Path, r.Header.Get("Origin"))

		next.ServeHTTP(w, r)
	})
}

func (mh *MiddlewareHandler) Security(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		next.ServeHTTP(w, r)
	})
}

func isOriginAllowed(origin string) bool {
	allowedOrigins := strings.Split(os.Getenv("ALLOWED_ORIGINS"), ",")
	for _, allowedOrigin := range allowedOrigins {
		if origin == allowedOrigin {
			return true
		}
	}
	return false
}

func GetUserFromContext(r *http.Request) (*models.User, bool) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	return user, ok
}
