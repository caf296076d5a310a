package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/nairv/dailycollect/pkg/auth"
	"github.com/nairv/dailycollect/pkg/ledger"
	"github.com/nairv/dailycollect/pkg/models"
	"github.com/nairv/dailycollect/pkg/store"
)

// Server holds the ledger, auth service and session manager.
type Server struct {
	ledger   *ledger.Ledger
	auth     *auth.Service
	sessions *auth.SessionManager
	storage  store.Store
}

func NewServer(s store.Store, sessionTTL time.Duration) *Server {
	return &Server{
		ledger:   ledger.NewLedger(s),
		auth:     auth.NewService(s),
		sessions: auth.NewSessionManager(sessionTTL),
		storage:  s,
	}
}

// Router builds the route table. Everything except /login requires a
// session token.
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/login", s.loginHandler).Methods("POST")

	api := router.PathPrefix("/").Subrouter()
	api.Use(s.requireSession)
	api.HandleFunc("/logout", s.logoutHandler).Methods("POST")
	api.HandleFunc("/loans", s.createLoanHandler).Methods("POST")
	api.HandleFunc("/loans/active", s.activeLoansHandler).Methods("GET")
	api.HandleFunc("/loans/completed", s.completedLoansHandler).Methods("GET")
	api.HandleFunc("/loans/{id}/collections", s.addCollectionHandler).Methods("POST")
	api.HandleFunc("/collections", s.collectionsHandler).Methods("GET")
	api.HandleFunc("/summary", s.summaryHandler).Methods("GET")
	api.HandleFunc("/password", s.changePasswordHandler).Methods("POST")
	return router
}

func respondJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, code int, message string) {
	respondJSON(w, code, map[string]string{"error": message})
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

func (s *Server) loginHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := s.auth.Verify(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			respondError(w, http.StatusUnauthorized, "invalid credentials")
		} else {
			logrus.WithError(err).Error("login failed")
			respondError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	session := s.sessions.Create(user)
	respondJSON(w, http.StatusOK, map[string]string{
		"token": session.Token,
		"name":  session.Name,
	})
}

func (s *Server) logoutHandler(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r)
	s.sessions.Delete(session.Token)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) createLoanHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PartyName    string          `json:"party_name"`
		MobileNumber string          `json:"mobile_number"`
		TotalAmount  decimal.Decimal `json:"total_amount"`
		DailyAmount  decimal.Decimal `json:"daily_amount"`
		TotalDays    int             `json:"total_days"`
		PaymentMode  string          `json:"payment_mode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	party := strings.TrimSpace(req.PartyName)
	if party == "" {
		respondError(w, http.StatusBadRequest, "customer name required")
		return
	}
	if len(req.MobileNumber) != 10 || !isDigits(req.MobileNumber) {
		respondError(w, http.StatusBadRequest, "enter valid 10-digit mobile number")
		return
	}
	if req.TotalAmount.LessThanOrEqual(decimal.Zero) || req.DailyAmount.LessThanOrEqual(decimal.Zero) {
		respondError(w, http.StatusBadRequest, "amounts must be greater than 0")
		return
	}
	if req.TotalDays < 1 {
		respondError(w, http.StatusBadRequest, "total days must be at least 1")
		return
	}
	mode, err := models.ParseMode(req.PaymentMode)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	loanID, err := s.ledger.AddLoan(party, req.MobileNumber, req.TotalAmount, req.DailyAmount, req.TotalDays, mode)
	if err != nil {
		logrus.WithError(err).Error("failed to create loan")
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{"loan_id": loanID})
}

func (s *Server) addCollectionHandler(w http.ResponseWriter, r *http.Request) {
	loanID := mux.Vars(r)["id"]

	var req struct {
		Amount      decimal.Decimal `json:"amount"`
		DaysCount   int             `json:"days_count"`
		PaymentMode string          `json:"payment_mode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.Amount.LessThanOrEqual(decimal.Zero) {
		respondError(w, http.StatusBadRequest, "amount must be greater than 0")
		return
	}
	if req.DaysCount < 1 {
		respondError(w, http.StatusBadRequest, "days count must be at least 1")
		return
	}
	mode, err := models.ParseMode(req.PaymentMode)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.ledger.AddCollection(loanID, req.Amount, req.DaysCount, mode); err != nil {
		switch {
		case errors.Is(err, ledger.ErrLoanNotFound):
			respondError(w, http.StatusNotFound, "loan not found")
		case errors.Is(err, ledger.ErrAmountExceedsRemaining):
			respondError(w, http.StatusUnprocessableEntity, "cannot exceed remaining amount")
		default:
			logrus.WithError(err).Error("failed to apply collection")
			respondError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	w.WriteHeader(http.StatusCreated)
}

func (s *Server) activeLoansHandler(w http.ResponseWriter, r *http.Request) {
	loans, err := s.ledger.ActiveLoans()
	if err != nil {
		logrus.WithError(err).Error("failed to read active loans")
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if loans == nil {
		loans = []*models.Loan{}
	}
	respondJSON(w, http.StatusOK, loans)
}

func (s *Server) completedLoansHandler(w http.ResponseWriter, r *http.Request) {
	loans, err := s.ledger.CompletedLoans()
	if err != nil {
		logrus.WithError(err).Error("failed to read completed loans")
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if loans == nil {
		loans = []*models.Loan{}
	}
	respondJSON(w, http.StatusOK, loans)
}

func (s *Server) collectionsHandler(w http.ResponseWriter, r *http.Request) {
	var from, to time.Time
	var err error
	if v := r.URL.Query().Get("from"); v != "" {
		from, err = time.Parse(models.DateLayout, v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid from date")
			return
		}
	}
	if v := r.URL.Query().Get("to"); v != "" {
		to, err = time.Parse(models.DateLayout, v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid to date")
			return
		}
	}

	collections, total, err := s.ledger.CollectionsBetween(from, to)
	if err != nil {
		logrus.WithError(err).Error("failed to read collections")
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"collections":  collections,
		"total_amount": total,
	})
}

func (s *Server) summaryHandler(w http.ResponseWriter, r *http.Request) {
	summary, err := s.ledger.Summary()
	if err != nil {
		logrus.WithError(err).Error("failed to compute summary")
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

func (s *Server) changePasswordHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.NewPassword) < 6 {
		respondError(w, http.StatusBadRequest, "password must be at least 6 characters")
		return
	}

	session := sessionFrom(r)
	if err := s.auth.ChangePassword(session.Username, req.OldPassword, req.NewPassword); err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			respondError(w, http.StatusUnauthorized, "incorrect password")
		} else {
			logrus.WithError(err).Error("failed to change password")
			respondError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
