package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"github.com/xtding233/capsule-gacha/internal/gacha"
	"github.com/xtding233/capsule-gacha/internal/reveal"
	"github.com/xtding233/capsule-gacha/internal/session"
	"github.com/xtding233/capsule-gacha/internal/token"
)

type HandlerDeps struct {
	Store *session.Store
}

type Handler struct {
	store *session.Store
}

func NewHandler(deps HandlerDeps) *Handler {
	return &Handler{store: deps.Store}
}

// Router mounts every endpoint behind permissive CORS for the browser client.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/rates", h.Rates)
	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", h.CreateSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetSession)
			r.Delete("/", h.DeleteSession)
			r.Post("/pull", h.Pull)
			r.Post("/skip", h.SetSkip)
			r.Post("/advance", h.Advance)
			r.Get("/step", h.Step)
			r.Get("/summary", h.Summary)
			r.Post("/finish", h.Finish)
			r.Get("/collection", h.Collection)
			r.Post("/topup", h.TopUp)
			r.Get("/topup/plan", h.TopUpPlan)
		})
	})
	return r
}

type errorResp struct {
	Err string `json:"err"`
}

type pullReq struct {
	Count int   `json:"count"`
	Skip  *bool `json:"skip,omitempty"`
}

type pullResp struct {
	Outcomes []gacha.Outcome  `json:"outcomes"`
	Price    int              `json:"price"`
	Session  session.Snapshot `json:"session"`
}

type stepResp struct {
	Step  *reveal.Step `json:"step,omitempty"`
	State reveal.State `json:"state"`
}

type summaryResp struct {
	Outcomes []gacha.Outcome `json:"outcomes"`
}

type topUpResp struct {
	Granted int              `json:"granted"`
	Session session.Snapshot `json:"session"`
}

type rateResp struct {
	Grade   gacha.Grade `json:"grade"`
	Percent float64     `json:"percent"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, gacha.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, gacha.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, token.ErrInsufficientFunds):
		return http.StatusPaymentRequired
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("internal error: %v", err)
	}
	writeJSON(w, status, errorResp{Err: err.Error()})
}

func sessionID(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	return id, err == nil
}

// withSession resolves {id} and runs fn with exclusive access to it.
func (h *Handler) withSession(w http.ResponseWriter, r *http.Request, fn func(*session.Session) error) {
	id, ok := sessionID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResp{Err: "invalid session id"})
		return
	}
	if err := h.store.With(id, fn); err != nil {
		writeError(w, err)
	}
}

func (h *Handler) Rates(w http.ResponseWriter, r *http.Request) {
	odds := gacha.GradeOdds()
	out := make([]rateResp, 0, len(odds))
	for g := gacha.GradeS; g >= gacha.GradeD; g-- {
		out = append(out, rateResp{Grade: g, Percent: odds[g]})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	s, err := h.store.Create()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.Snapshot())
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(s *session.Session) error {
		writeJSON(w, http.StatusOK, s.Snapshot())
		return nil
	})
}

func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResp{Err: "invalid session id"})
		return
	}
	if err := h.store.Delete(id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Pull accepts {"count": 1|10, "skip": bool} or ?count= for a bodyless call.
func (h *Handler) Pull(w http.ResponseWriter, r *http.Request) {
	var req pullReq
	if q := r.URL.Query().Get("count"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResp{Err: "invalid count"})
			return
		}
		req.Count = n
	} else if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp{Err: "invalid body: " + err.Error()})
		return
	}

	h.withSession(w, r, func(s *session.Session) error {
		if req.Skip != nil {
			s.SetSkip(*req.Skip)
		}
		outs, err := s.Pull(req.Count)
		if err != nil {
			return err
		}
		writeJSON(w, http.StatusOK, pullResp{Outcomes: outs, Price: s.Price(req.Count), Session: s.Snapshot()})
		return nil
	})
}

func (h *Handler) SetSkip(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Skip bool `json:"skip"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp{Err: "invalid body: " + err.Error()})
		return
	}
	h.withSession(w, r, func(s *session.Session) error {
		s.SetSkip(req.Skip)
		writeJSON(w, http.StatusOK, s.Snapshot())
		return nil
	})
}

func (h *Handler) Advance(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(s *session.Session) error {
		resp := stepResp{}
		if step, ok := s.Advance(); ok {
			resp.Step = &step
		}
		resp.State = s.RevealState()
		writeJSON(w, http.StatusOK, resp)
		return nil
	})
}

func (h *Handler) Step(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(s *session.Session) error {
		step, err := s.CurrentStep()
		if err != nil {
			return err
		}
		writeJSON(w, http.StatusOK, stepResp{Step: &step, State: s.RevealState()})
		return nil
	})
}

func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(s *session.Session) error {
		outs, err := s.Summary()
		if err != nil {
			return err
		}
		writeJSON(w, http.StatusOK, summaryResp{Outcomes: outs})
		return nil
	})
}

func (h *Handler) Finish(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(s *session.Session) error {
		if err := s.Finish(); err != nil {
			return err
		}
		writeJSON(w, http.StatusOK, s.Snapshot())
		return nil
	})
}

func (h *Handler) Collection(w http.ResponseWriter, r *http.Request) {
	order := session.Order(r.URL.Query().Get("sort"))
	h.withSession(w, r, func(s *session.Session) error {
		writeJSON(w, http.StatusOK, s.Collection(order))
		return nil
	})
}

func (h *Handler) TopUp(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Bundle string `json:"bundle"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp{Err: "invalid body: " + err.Error()})
		return
	}
	h.withSession(w, r, func(s *session.Session) error {
		granted, err := s.TopUp(req.Bundle)
		if err != nil {
			return err
		}
		writeJSON(w, http.StatusOK, topUpResp{Granted: granted, Session: s.Snapshot()})
		return nil
	})
}

// TopUpPlan answers ?count=1|10&pulls=n with the cheapest bundles covering the shortfall.
func (h *Handler) TopUpPlan(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	count, err := strconv.Atoi(q.Get("count"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp{Err: "invalid count"})
		return
	}
	pulls := 1
	if v := q.Get("pulls"); v != "" {
		if pulls, err = strconv.Atoi(v); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResp{Err: "invalid pulls"})
			return
		}
	}
	h.withSession(w, r, func(s *session.Session) error {
		plan, err := s.TopUpPlan(count, pulls)
		if err != nil {
			return err
		}
		writeJSON(w, http.StatusOK, plan)
		return nil
	})
}
