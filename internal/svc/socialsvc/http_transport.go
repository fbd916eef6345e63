package socialsvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mkrupp/socialsvc/internal/domain"
	"github.com/mkrupp/socialsvc/internal/infra/logging"
	"github.com/mkrupp/socialsvc/internal/infra/metrics"
	http_ "github.com/mkrupp/socialsvc/internal/infra/transport/http"
)

const (
	WelcomeMessage        = "Welcome to the Social Media API!"
	AccountDeletedMessage = "User deleted successfully."
	AccountMissingMessage = "User not found."
)

// HTTPTransportConfig contains configuration parameters for the HTTP transport layer.
type HTTPTransportConfig struct {
	http_.HTTPTransportConfig

	// MetricsPath is where Prometheus metrics are exposed; empty disables the endpoint
	MetricsPath string `env:"METRICS_PATH" default:"/metrics"`
}

// HealthChecker reports whether the service's dependencies are reachable.
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// HTTPTransport handles HTTP requests for the accounts and messages API.
type HTTPTransport struct {
	accounts *AccountService
	messages *MessageService
	health   HealthChecker
	log      logging.Logger
	cfg      HTTPTransportConfig
	router   *mux.Router
}

var _ http_.HTTPTransport = (*HTTPTransport)(nil)

// NewHTTPTransport creates a new HTTPTransport and sets up its routes:
//   - GET /: welcome message
//   - POST /register, POST /login: account registration and login
//   - POST /messages, GET /messages: post and list messages
//   - GET, PATCH, DELETE /messages/{messageId}: read, edit and delete a message
//   - GET /accounts, GET /accounts/{accountId}: list and read accounts
//   - GET /accounts/{accountId}/messages: messages posted by an account
//   - DELETE /accounts/{accountId}: delete an account and its messages
//   - GET /healthz and the metrics path.
func NewHTTPTransport(
	accounts *AccountService,
	messages *MessageService,
	health HealthChecker,
	cfg HTTPTransportConfig,
	log logging.Logger,
) *HTTPTransport {
	ht := &HTTPTransport{
		accounts: accounts,
		messages: messages,
		health:   health,
		log:      log,
		cfg:      cfg,
	}

	router := mux.NewRouter()
	router.Use(metrics.InstrumentHandler)

	router.HandleFunc("/", ht.HandleHome).Methods(http.MethodGet)
	router.HandleFunc("/register", ht.HandleRegister).Methods(http.MethodPost)
	router.HandleFunc("/login", ht.HandleLogin).Methods(http.MethodPost)

	router.HandleFunc("/messages", ht.HandlePostMessage).Methods(http.MethodPost)
	router.HandleFunc("/messages", ht.HandleListMessages).Methods(http.MethodGet)
	router.HandleFunc("/messages/{messageId}", ht.HandleGetMessage).Methods(http.MethodGet)
	router.HandleFunc("/messages/{messageId}", ht.HandleUpdateMessage).Methods(http.MethodPatch)
	router.HandleFunc("/messages/{messageId}", ht.HandleDeleteMessage).Methods(http.MethodDelete)

	router.HandleFunc("/accounts", ht.HandleListAccounts).Methods(http.MethodGet)
	router.HandleFunc("/accounts/{accountId}", ht.HandleGetAccount).Methods(http.MethodGet)
	router.HandleFunc("/accounts/{accountId}", ht.HandleDeleteAccount).Methods(http.MethodDelete)
	router.HandleFunc("/accounts/{accountId}/messages", ht.HandleListAccountMessages).Methods(http.MethodGet)

	router.HandleFunc("/healthz", ht.HandleHealth).Methods(http.MethodGet)

	if cfg.MetricsPath != "" {
		router.Handle(cfg.MetricsPath, metrics.Handler()).Methods(http.MethodGet)
	}

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = http_.WriteAPIError(w, http.StatusNotFound, "No handler found for this route.")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = http_.WriteAPIError(w, http.StatusMethodNotAllowed, "Request method is not supported for this route.")
	})

	ht.router = router

	return ht
}

// ServeHTTP implements http.Handler.
func (ht *HTTPTransport) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ht.router.ServeHTTP(w, r)
}

// HandleHome answers with the API welcome envelope.
func (ht *HTTPTransport) HandleHome(w http.ResponseWriter, r *http.Request) {
	ht.respond(w, r, "home", func() (int, any, error) {
		//nolint:exhaustruct
		return http.StatusOK, domain.APIResponse{Message: WelcomeMessage, Success: true}, nil
	})
}

// HandleRegister registers an account from a JSON {username, password} body.
func (ht *HTTPTransport) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ht.respond(w, r, "register account", func() (int, any, error) {
		var candidate *domain.AccountCandidate
		if err := decodeBody(r, &candidate); err != nil {
			return 0, nil, err
		}

		acc, err := ht.accounts.Register(r.Context(), candidate)
		if err != nil {
			return 0, nil, err
		}

		return http.StatusOK, acc, nil
	})
}

// HandleLogin returns the account matching a JSON {username, password} body.
func (ht *HTTPTransport) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ht.respond(w, r, "login", func() (int, any, error) {
		var candidate *domain.AccountCandidate
		if err := decodeBody(r, &candidate); err != nil {
			return 0, nil, err
		}

		acc, err := ht.accounts.Login(r.Context(), candidate)
		if err != nil {
			return 0, nil, err
		}

		return http.StatusOK, acc, nil
	})
}

// HandlePostMessage posts a message from a JSON {messageText, postedBy, timePostedEpoch} body.
func (ht *HTTPTransport) HandlePostMessage(w http.ResponseWriter, r *http.Request) {
	ht.respond(w, r, "post message", func() (int, any, error) {
		var candidate *domain.MessageCandidate
		if err := decodeBody(r, &candidate); err != nil {
			return 0, nil, err
		}

		msg, err := ht.messages.Post(r.Context(), candidate)
		if err != nil {
			return 0, nil, err
		}

		return http.StatusOK, msg, nil
	})
}

// HandleListMessages returns every message.
func (ht *HTTPTransport) HandleListMessages(w http.ResponseWriter, r *http.Request) {
	ht.respond(w, r, "list messages", func() (int, any, error) {
		messages, err := ht.messages.ListMessages(r.Context())
		if err != nil {
			return 0, nil, err
		}

		return http.StatusOK, messages, nil
	})
}

// HandleGetMessage returns a message, or an empty body if there is none.
func (ht *HTTPTransport) HandleGetMessage(w http.ResponseWriter, r *http.Request) {
	ht.respond(w, r, "get message", func() (int, any, error) {
		id, err := pathID(r, "messageId", "message")
		if err != nil {
			return 0, nil, err
		}

		msg, ok, err := ht.messages.GetMessage(r.Context(), id)
		if err != nil || !ok {
			return http.StatusOK, nil, err
		}

		return http.StatusOK, msg, nil
	})
}

// HandleUpdateMessage replaces a message's text from a JSON {messageText} body.
// Answers with the number of rows affected.
func (ht *HTTPTransport) HandleUpdateMessage(w http.ResponseWriter, r *http.Request) {
	ht.respond(w, r, "update message", func() (int, any, error) {
		id, err := pathID(r, "messageId", "message")
		if err != nil {
			return 0, nil, err
		}

		var candidate *domain.MessageCandidate
		if err := decodeBody(r, &candidate); err != nil {
			return 0, nil, err
		}

		var text *string
		if candidate != nil {
			text = candidate.Text
		}

		rows, err := ht.messages.UpdateMessage(r.Context(), id, text)
		if err != nil {
			return 0, nil, err
		}

		return http.StatusOK, rows, nil
	})
}

// HandleDeleteMessage deletes a message and answers with the number of rows
// affected, or with an empty body if the message does not exist.
func (ht *HTTPTransport) HandleDeleteMessage(w http.ResponseWriter, r *http.Request) {
	ht.respond(w, r, "delete message", func() (int, any, error) {
		id, err := pathID(r, "messageId", "message")
		if err != nil {
			return 0, nil, err
		}

		_, ok, err := ht.messages.GetMessage(r.Context(), id)
		if err != nil || !ok {
			return http.StatusOK, nil, err
		}

		rows, err := ht.messages.DeleteMessage(r.Context(), id)
		if err != nil {
			return 0, nil, err
		}

		return http.StatusOK, rows, nil
	})
}

// HandleListAccounts returns every account.
func (ht *HTTPTransport) HandleListAccounts(w http.ResponseWriter, r *http.Request) {
	ht.respond(w, r, "list accounts", func() (int, any, error) {
		accounts, err := ht.accounts.ListAccounts(r.Context())
		if err != nil {
			return 0, nil, err
		}

		return http.StatusOK, accounts, nil
	})
}

// HandleGetAccount returns an account, or an empty body if there is none.
func (ht *HTTPTransport) HandleGetAccount(w http.ResponseWriter, r *http.Request) {
	ht.respond(w, r, "get account", func() (int, any, error) {
		id, err := pathID(r, "accountId", "account")
		if err != nil {
			return 0, nil, err
		}

		acc, ok, err := ht.accounts.GetAccount(r.Context(), id)
		if err != nil || !ok {
			return http.StatusOK, nil, err
		}

		return http.StatusOK, acc, nil
	})
}

// HandleListAccountMessages returns the messages posted by an account.
func (ht *HTTPTransport) HandleListAccountMessages(w http.ResponseWriter, r *http.Request) {
	ht.respond(w, r, "list account messages", func() (int, any, error) {
		id, err := pathID(r, "accountId", "account")
		if err != nil {
			return 0, nil, err
		}

		messages, err := ht.messages.ListMessagesByAccount(r.Context(), id)
		if err != nil {
			return 0, nil, err
		}

		return http.StatusOK, messages, nil
	})
}

// HandleDeleteAccount deletes an account. Answers 200 or 404 with a status line.
func (ht *HTTPTransport) HandleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	ht.respond(w, r, "delete account", func() (int, any, error) {
		id, err := pathID(r, "accountId", "account")
		if err != nil {
			return 0, nil, err
		}

		deleted, err := ht.accounts.DeleteAccount(r.Context(), id)
		if err != nil {
			return 0, nil, err
		}

		if !deleted {
			return http.StatusNotFound, domain.MessageResponse{Message: AccountMissingMessage}, nil
		}

		return http.StatusOK, domain.MessageResponse{Message: AccountDeletedMessage}, nil
	})
}

// HandleHealth pings the database.
func (ht *HTTPTransport) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if err := ht.health.PingContext(r.Context()); err != nil {
		ht.log.WarnContext(r.Context(), "health check failed", "error", err)

		_ = http_.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})

		return
	}

	_ = http_.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// respond runs a handler body and renders its result. Errors are classified
// into their status and caller-safe message; the full error is only logged.
func (ht *HTTPTransport) respond(
	w http.ResponseWriter,
	r *http.Request,
	op string,
	handle func() (status int, body any, err error),
) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	status, body, err := handle()
	if err != nil {
		class := Classify(err)
		metrics.ObserveClassifiedError(class.Kind, class.Status)

		level := logging.LevelWarn
		if class.Status >= http.StatusInternalServerError {
			level = logging.LevelError
		}

		log.Log(r.Context(), level, op+" failed", "error", err, "kind", class.Kind, "status", class.Status)

		if werr := http_.WriteAPIError(w, class.Status, class.Message); werr != nil {
			log.ErrorContext(r.Context(), "write error response failed", "error", werr)
		}

		return
	}

	if err := http_.WriteJSON(w, status, body); err != nil {
		log.ErrorContext(r.Context(), "write response failed", "error", err)

		return
	}

	log.DebugContext(r.Context(), op, "status", status)
}

// decodeBody decodes a JSON request body into dst. An empty body leaves dst
// untouched so validation reports the missing payload.
func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return domain.NewError(domain.ErrInvalidInput, "Malformed request body.").WithCause(err)
	}

	return nil
}

func pathID(r *http.Request, key, entity string) (int64, error) {
	raw := mux.Vars(r)[key]

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, domain.NewError(domain.ErrInvalidInput, "Invalid %s ID: %s.", entity, raw).
			WithCause(fmt.Errorf("parse %s: %w", key, err))
	}

	return id, nil
}
