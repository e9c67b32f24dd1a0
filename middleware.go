package authkit

import (
	"net/http"
)

// Middleware provides HTTP middleware for permission checking.
type Middleware struct {
	service      *Service
	getUserID    func(*http.Request) string
	errorHandler func(http.ResponseWriter, *http.Request, error)
}

// MiddlewareOption configures the Middleware.
type MiddlewareOption func(*Middleware)

// NewMiddleware creates a new Middleware instance.
//
// Example:
//
//	mw := authkit.NewMiddleware(service,
//	    authkit.WithUserIDExtractor(func(r *http.Request) string {
//	        return r.Header.Get("X-User-ID")
//	    }),
//	)
func NewMiddleware(service *Service, opts ...MiddlewareOption) *Middleware {
	m := &Middleware{
		service:      service,
		getUserID:    defaultGetUserID,
		errorHandler: defaultErrorHandler,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// WithUserIDExtractor sets a custom function to extract user ID from request.
func WithUserIDExtractor(fn func(*http.Request) string) MiddlewareOption {
	return func(m *Middleware) {
		m.getUserID = fn
	}
}

// WithErrorHandler sets a custom error handler for middleware.
func WithErrorHandler(fn func(http.ResponseWriter, *http.Request, error)) MiddlewareOption {
	return func(m *Middleware) {
		m.errorHandler = fn
	}
}

func defaultGetUserID(r *http.Request) string {
	return GetUserID(r.Context())
}

func defaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	if IsAccessDenied(err) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	if IsInvalidArgument(err) {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

// ParamsExtractor builds the rule parameters for a check from an HTTP
// request. Extractors compose: each one contributes entries to the params
// map passed to CheckAccess.
type ParamsExtractor func(*http.Request) map[string]any

// ParamsFromQuery creates a ParamsExtractor that reads the named query
// parameters into the params map.
//
// Example:
//
//	// For route /posts?authorID=usr_123
//	mw.RequirePermission("updatePost", authkit.ParamsFromQuery("authorID"))
func ParamsFromQuery(names ...string) ParamsExtractor {
	return func(r *http.Request) map[string]any {
		params := make(map[string]any, len(names))
		for _, name := range names {
			if v := r.URL.Query().Get(name); v != "" {
				params[name] = v
			}
		}
		return params
	}
}

// ParamsFromPath creates a ParamsExtractor that reads the named URL path
// values into the params map. Compatible with the standard library router
// and chi-style patterns.
//
// Example:
//
//	// For route /posts/{postID}
//	mw.RequirePermission("updatePost", authkit.ParamsFromPath("postID"))
func ParamsFromPath(names ...string) ParamsExtractor {
	return func(r *http.Request) map[string]any {
		params := make(map[string]any, len(names))
		for _, name := range names {
			if v := r.PathValue(name); v != "" {
				params[name] = v
			}
		}
		return params
	}
}

// ParamsFromHeader creates a ParamsExtractor that reads the given headers
// into the params map under the given parameter names.
//
// Example:
//
//	mw.RequirePermission("manageTenant", authkit.ParamsFromHeader(map[string]string{
//	    "tenantID": "X-Tenant-ID",
//	}))
func ParamsFromHeader(headers map[string]string) ParamsExtractor {
	return func(r *http.Request) map[string]any {
		params := make(map[string]any, len(headers))
		for name, header := range headers {
			if v := r.Header.Get(header); v != "" {
				params[name] = v
			}
		}
		return params
	}
}

// StaticParams creates a ParamsExtractor that always contributes the same
// parameters. Useful for fixed resource attributes.
func StaticParams(params map[string]any) ParamsExtractor {
	return func(r *http.Request) map[string]any {
		return params
	}
}

func (m *Middleware) collectParams(r *http.Request, extractors []ParamsExtractor) map[string]any {
	if len(extractors) == 0 {
		return nil
	}
	params := map[string]any{}
	for _, extract := range extractors {
		for k, v := range extract(r) {
			params[k] = v
		}
	}
	return params
}

// RequirePermission creates middleware that requires a specific permission.
// The optional extractors build the rule parameters from the request.
//
// Example:
//
//	router.With(mw.RequirePermission("updatePost", authkit.ParamsFromPath("postID"))).
//	    Put("/posts/{postID}", updatePostHandler)
func (m *Middleware) RequirePermission(permission string, extractors ...ParamsExtractor) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			userID := m.getUserID(r)
			if userID == "" {
				m.errorHandler(w, r, NewError(ErrAccessDenied, "no user ID in request"))
				return
			}

			params := m.collectParams(r, extractors)

			allowed, err := m.service.CheckAccess(ctx, userID, permission, params)
			if err != nil {
				m.errorHandler(w, r, err)
				return
			}
			if !allowed {
				m.errorHandler(w, r, NewError(ErrAccessDenied, "missing required permission").
					WithItem(permission).
					WithUser(userID))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAnyPermission creates middleware that requires any of the specified
// permissions.
//
// Example:
//
//	router.With(mw.RequireAnyPermission([]string{"readPost", "updatePost"})).
//	    Get("/posts/{postID}", getPostHandler)
func (m *Middleware) RequireAnyPermission(permissions []string, extractors ...ParamsExtractor) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			userID := m.getUserID(r)
			if userID == "" {
				m.errorHandler(w, r, NewError(ErrAccessDenied, "no user ID in request"))
				return
			}

			params := m.collectParams(r, extractors)

			for _, permission := range permissions {
				allowed, err := m.service.CheckAccess(ctx, userID, permission, params)
				if err != nil {
					m.errorHandler(w, r, err)
					return
				}
				if allowed {
					next.ServeHTTP(w, r)
					return
				}
			}

			m.errorHandler(w, r, NewError(ErrAccessDenied, "missing required permission").
				WithUser(userID))
		})
	}
}

// RequireRole creates middleware that requires a specific role. Roles are
// checked through the same hierarchy traversal as permissions, so a role
// granted through a parent role also satisfies the check.
//
// Example:
//
//	router.With(mw.RequireRole("admin")).Delete("/posts/{postID}", deletePostHandler)
func (m *Middleware) RequireRole(role string, extractors ...ParamsExtractor) func(http.Handler) http.Handler {
	return m.RequirePermission(role, extractors...)
}

// InjectAuditContext creates middleware that extracts audit information from the request
// and adds it to the context for use in mutating operations.
//
// Example:
//
//	router.Use(mw.InjectAuditContext())
func (m *Middleware) InjectAuditContext() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			// Extract IP address
			ip := r.Header.Get("X-Forwarded-For")
			if ip == "" {
				ip = r.Header.Get("X-Real-IP")
			}
			if ip == "" {
				ip = r.RemoteAddr
			}
			ctx = WithIPAddress(ctx, ip)

			// Extract User Agent
			ctx = WithUserAgent(ctx, r.UserAgent())

			// Extract Request ID (commonly set by other middleware)
			requestID := r.Header.Get("X-Request-ID")
			if requestID != "" {
				ctx = WithRequestID(ctx, requestID)
			}

			// Set actor ID from user ID if available
			userID := m.getUserID(r)
			if userID != "" {
				ctx = WithActorID(ctx, userID)
				ctx = WithUserID(ctx, userID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
