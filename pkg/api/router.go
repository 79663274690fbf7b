package api

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"gitlab.connectwisedev.com/product-catalog/pkg/importer"
)

// maxCSVBody bounds inline CSV uploads on the local server.
const maxCSVBody = 10 << 20

// ProxyHandler is the signature of every API Gateway proxy handler.
type ProxyHandler func(context.Context, events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)

// CSVImporter parses and dispatches a CSV body without staging it.
type CSVImporter interface {
	ImportCSV(ctx context.Context, r io.Reader) (importer.FileResult, error)
}

// Credentials checks a Basic Authorization header value.
type Credentials interface {
	Check(token string) (string, error)
}

// CacheStats reports what the product cache currently tracks.
type CacheStats interface {
	KnownIDs(ctx context.Context) ([]string, error)
}

// RouterOptions configures NewRouter. Zero values disable the feature.
type RouterOptions struct {
	RateLimit int
	Auth      Credentials
	Importer  CSVImporter
	Cache     CacheStats
}

// NewRouter serves the handlers over plain HTTP on the same paths the
// gateway exposes, for running the catalog on a developer machine.
func NewRouter(h *Handlers, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	if opts.RateLimit > 0 {
		r.Use(httprate.LimitByIP(opts.RateLimit, time.Minute))
	}

	r.Get("/health", health(opts.Cache))

	r.Route("/products", func(r chi.Router) {
		r.Get("/", Adapt(h.ListProducts))
		r.Post("/", Adapt(h.CreateProduct))
		r.Get("/{productId}", Adapt(h.GetProduct))
		r.Put("/{productId}/stock", Adapt(h.UpdateStock))
		r.Patch("/{productId}/stock", Adapt(h.UpdateStock))
	})

	r.Group(func(r chi.Router) {
		if opts.Auth != nil {
			r.Use(basicAuth(opts.Auth))
		}
		if h.uploads != nil {
			r.Get("/import", Adapt(h.ImportProductsFile))
		}
		if opts.Importer != nil {
			r.Post("/import/csv", importCSV(opts.Importer))
		}
	})

	return r
}

// Adapt turns a proxy handler into an http.HandlerFunc.
func Adapt(fn ProxyHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, `{"message":"Invalid request body"}`, http.StatusBadRequest)
			return
		}

		res, err := fn(r.Context(), toProxyRequest(r, string(body)))
		if err != nil {
			http.Error(w, `{"message":"Internal server error"}`, http.StatusInternalServerError)
			return
		}
		writeProxyResponse(w, res)
	}
}

func toProxyRequest(r *http.Request, body string) events.APIGatewayProxyRequest {
	req := events.APIGatewayProxyRequest{
		Resource:              r.URL.Path,
		Path:                  r.URL.Path,
		HTTPMethod:            r.Method,
		Headers:               map[string]string{},
		QueryStringParameters: map[string]string{},
		PathParameters:        map[string]string{},
		Body:                  body,
	}
	for name := range r.Header {
		req.Headers[name] = r.Header.Get(name)
	}
	for name, values := range r.URL.Query() {
		if len(values) > 0 {
			req.QueryStringParameters[name] = values[0]
		}
	}
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		for i, key := range rctx.URLParams.Keys {
			req.PathParameters[key] = rctx.URLParams.Values[i]
		}
	}
	return req
}

func writeProxyResponse(w http.ResponseWriter, res events.APIGatewayProxyResponse) {
	for name, value := range res.Headers {
		// CORS is owned by the middleware here.
		if strings.HasPrefix(name, "Access-Control-") {
			continue
		}
		w.Header().Set(name, value)
	}
	w.WriteHeader(res.StatusCode)
	_, _ = io.WriteString(w, res.Body)
}

func basicAuth(creds Credentials) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, err := creds.Check(r.Header.Get("Authorization")); err != nil {
				w.Header().Set("WWW-Authenticate", `Basic realm="import"`)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"message":"Unauthorized"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func health(stats CacheStats) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := map[string]interface{}{"status": "ok"}
		if stats != nil {
			ids, err := stats.KnownIDs(r.Context())
			if err != nil {
				body["cache"] = err.Error()
			} else {
				body["cachedProducts"] = len(ids)
			}
		}
		writeProxyResponse(w, respond(http.StatusOK, methodsImport, body))
	}
}

func importCSV(imp CSVImporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := imp.ImportCSV(r.Context(), http.MaxBytesReader(w, r.Body, maxCSVBody))
		if err != nil {
			writeProxyResponse(w, fail(http.StatusBadRequest, methodsImport, err.Error()))
			return
		}
		writeProxyResponse(w, ok(methodsImport, Envelope{Data: map[string]int{
			"records": res.Records,
			"batches": res.Batches,
		}}))
	}
}
