// Package api exposes the wallet session and record endpoints over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apperrors "github.com/eatglobe/globe-middleware/pkg/app/errors"
	apphttp "github.com/eatglobe/globe-middleware/pkg/app/http"
	"github.com/eatglobe/globe-middleware/pkg/auth"
	"github.com/eatglobe/globe-middleware/pkg/recs/service"
	"github.com/eatglobe/globe-middleware/pkg/session"
	"github.com/eatglobe/globe-middleware/pkg/wallet"
)

// HTTP wraps the session manager and recommendation service to provide HTTP
// endpoints
type HTTP struct {
	sessions  *session.Manager
	providers map[wallet.Chain]wallet.Provider
	recs      service.Service
	tokens    *auth.TokenIssuer
	logger    *zap.Logger
}

// RegisterRoutes registers all endpoints on the given chi router
func RegisterRoutes(
	r chi.Router,
	sessions *session.Manager,
	providers map[wallet.Chain]wallet.Provider,
	recService service.Service,
	tokens *auth.TokenIssuer,
	logger *zap.Logger,
) {
	h := &HTTP{
		sessions:  sessions,
		providers: providers,
		recs:      recService,
		tokens:    tokens,
		logger:    logger,
	}

	r.Route("/v1", func(r chi.Router) {
		r.Post("/session/connect", apphttp.HandleError(h.connect))
		r.Delete("/session", apphttp.HandleError(h.disconnect))
		r.Get("/session", apphttp.HandleError(h.currentSession))

		r.Get("/places", apphttp.HandleError(h.listPlaces))
		r.Get("/places/{placeID}/likes", apphttp.HandleError(h.placeLikes))
		r.Get("/places/{placeID}/comments", apphttp.HandleError(h.placeComments))
		r.Get("/profiles/{address}", apphttp.HandleError(h.profile))

		r.Group(func(r chi.Router) {
			r.Use(h.requireSession)
			r.Post("/records/recommendation", apphttp.HandleError(h.submitRecommendation))
			r.Post("/records/like", apphttp.HandleError(h.submitLike))
			r.Post("/records/comment", apphttp.HandleError(h.submitComment))
			r.Put("/profile", apphttp.HandleError(h.saveProfile))
		})
	})
}

// ConnectRequest starts a wallet connect flow for one chain.
type ConnectRequest struct {
	Chain     string `json:"chain"`
	Connector string `json:"connector"`
}

// ConnectResponse carries the established session and its bearer token.
type ConnectResponse struct {
	Chain     string `json:"chain"`
	Address   string `json:"address"`
	Connector string `json:"connector"`
	Token     string `json:"token"`
}

// SessionResponse describes the current session state.
type SessionResponse struct {
	Connected bool   `json:"connected"`
	Chain     string `json:"chain,omitempty"`
	Address   string `json:"address,omitempty"`
	Connector string `json:"connector,omitempty"`
	Username  string `json:"username,omitempty"`
}

func (h *HTTP) connect(w http.ResponseWriter, r *http.Request) error {
	var req ConnectRequest
	if err := h.readJSON(r, &req); err != nil {
		return err
	}

	chain := wallet.Chain(req.Chain)
	if !chain.Valid() {
		return apperrors.BadRequestError(nil, "unknown chain: "+req.Chain)
	}
	provider, ok := h.providers[chain]
	if !ok {
		return apperrors.NotSupportedError(wallet.ErrWalletUnavailable, "no wallet configured for chain "+req.Chain)
	}

	h.sessions.BeginConnect()

	address, err := provider.Connect(r.Context())
	if err != nil {
		h.sessions.AbortConnect()
		return mapWalletError(err, "wallet connect failed")
	}

	// The bridge reports an address, but only a signature over a fresh
	// challenge proves the wallet actually holds its key.
	challenge := auth.NewChallenge(chain, address)
	proof, err := provider.SignMessage(r.Context(), challenge)
	if err != nil {
		h.sessions.AbortConnect()
		return mapWalletError(err, "wallet declined the ownership challenge")
	}
	if err := auth.VerifyOwnership(chain, address, challenge, proof); err != nil {
		h.sessions.AbortConnect()
		h.logger.Warn("Wallet ownership verification failed",
			zap.String("chain", chain.String()),
			zap.String("address", address),
			zap.Error(err))
		return apperrors.UnAuthorizedError(err, "wallet ownership verification failed")
	}

	sess := wallet.Session{
		Chain:     chain,
		Address:   address,
		Connector: req.Connector,
		Provider:  provider,
	}
	if !h.sessions.CompleteConnect(sess) {
		return apperrors.ConflictError(nil, "connect flow was canceled")
	}

	token, err := h.tokens.Issue(chain, address)
	if err != nil {
		return apperrors.GeneralError(err)
	}

	return apphttp.WriteJSON(w, http.StatusOK, &ConnectResponse{
		Chain:     chain.String(),
		Address:   address,
		Connector: req.Connector,
		Token:     token,
	})
}

func (h *HTTP) disconnect(w http.ResponseWriter, r *http.Request) error {
	if sess, ok := h.sessions.Active(); ok && sess.Provider != nil {
		if err := sess.Provider.Disconnect(r.Context()); err != nil {
			h.logger.Warn("Vendor disconnect failed", zap.Error(err))
		}
	}
	h.sessions.Disconnect()
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (h *HTTP) currentSession(w http.ResponseWriter, _ *http.Request) error {
	sess, ok := h.sessions.Active()
	if !ok {
		return apphttp.WriteJSON(w, http.StatusOK, &SessionResponse{Connected: false})
	}

	resp := &SessionResponse{
		Connected: true,
		Chain:     sess.Chain.String(),
		Address:   sess.Address,
		Connector: sess.Connector,
	}
	if profile := h.sessions.Profile(); profile != nil {
		resp.Username = profile.Username
	}
	return apphttp.WriteJSON(w, http.StatusOK, resp)
}

// SubmitResponse returns the id of a newly published record.
type SubmitResponse struct {
	RecordID string `json:"recordId"`
}

func (h *HTTP) submitRecommendation(w http.ResponseWriter, r *http.Request) error {
	var req service.RecommendationInput
	if err := h.readJSON(r, &req); err != nil {
		return err
	}

	recordID, err := h.recs.SubmitRecommendation(r.Context(), &req)
	if err != nil {
		return err
	}
	return apphttp.WriteJSON(w, http.StatusCreated, &SubmitResponse{RecordID: recordID})
}

// LikeRequest sets the like state for a place.
type LikeRequest struct {
	PlaceID string `json:"placeId"`
	Liked   bool   `json:"liked"`
}

func (h *HTTP) submitLike(w http.ResponseWriter, r *http.Request) error {
	var req LikeRequest
	if err := h.readJSON(r, &req); err != nil {
		return err
	}

	recordID, err := h.recs.SetLike(r.Context(), req.PlaceID, req.Liked)
	if err != nil {
		return err
	}
	return apphttp.WriteJSON(w, http.StatusCreated, &SubmitResponse{RecordID: recordID})
}

// CommentRequest adds a comment to a place.
type CommentRequest struct {
	PlaceID  string `json:"placeId"`
	Body     string `json:"body"`
	UserName string `json:"userName"`
}

func (h *HTTP) submitComment(w http.ResponseWriter, r *http.Request) error {
	var req CommentRequest
	if err := h.readJSON(r, &req); err != nil {
		return err
	}

	recordID, err := h.recs.SubmitComment(r.Context(), req.PlaceID, req.Body, req.UserName)
	if err != nil {
		return err
	}
	return apphttp.WriteJSON(w, http.StatusCreated, &SubmitResponse{RecordID: recordID})
}

// ProfileRequest saves the connected user's profile.
type ProfileRequest struct {
	Username  string `json:"username"`
	Bio       string `json:"bio"`
	AvatarURL string `json:"avatarUrl"`
}

func (h *HTTP) saveProfile(w http.ResponseWriter, r *http.Request) error {
	var req ProfileRequest
	if err := h.readJSON(r, &req); err != nil {
		return err
	}

	recordID, err := h.recs.SaveProfile(r.Context(), req.Username, req.Bio, req.AvatarURL)
	if err != nil {
		return err
	}
	return apphttp.WriteJSON(w, http.StatusOK, &SubmitResponse{RecordID: recordID})
}

func (h *HTTP) listPlaces(w http.ResponseWriter, r *http.Request) error {
	places, err := h.recs.LoadGlobe(r.Context())
	if err != nil {
		return err
	}
	return apphttp.WriteJSON(w, http.StatusOK, places)
}

// LikesResponse is the like state of one place.
type LikesResponse struct {
	PlaceID     string `json:"placeId"`
	Count       int    `json:"count"`
	LikedByUser bool   `json:"likedByUser"`
}

func (h *HTTP) placeLikes(w http.ResponseWriter, r *http.Request) error {
	placeID := chi.URLParam(r, "placeID")

	count, liked, err := h.recs.PlaceLikes(r.Context(), placeID)
	if err != nil {
		return err
	}
	return apphttp.WriteJSON(w, http.StatusOK, &LikesResponse{
		PlaceID:     placeID,
		Count:       count,
		LikedByUser: liked,
	})
}

func (h *HTTP) placeComments(w http.ResponseWriter, r *http.Request) error {
	comments, err := h.recs.PlaceComments(r.Context(), chi.URLParam(r, "placeID"))
	if err != nil {
		return err
	}
	return apphttp.WriteJSON(w, http.StatusOK, comments)
}

func (h *HTTP) profile(w http.ResponseWriter, r *http.Request) error {
	profile, err := h.recs.ProfileOf(r.Context(), chi.URLParam(r, "address"))
	if err != nil {
		return err
	}
	return apphttp.WriteJSON(w, http.StatusOK, profile)
}

func (h *HTTP) readJSON(r *http.Request, out any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20)) // 1MB limit
	if err != nil {
		return apperrors.BadRequestError(err, "failed to read request")
	}
	if err := json.Unmarshal(body, out); err != nil {
		return apperrors.BadRequestError(err, "invalid JSON")
	}
	return nil
}

func mapWalletError(err error, message string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, wallet.ErrWalletUnavailable):
		return apperrors.DependencyError(err, "wallet is unavailable; is the extension installed?")
	case errors.Is(err, wallet.ErrWalletNotConnected):
		return apperrors.UnAuthorizedError(err, "wallet is not connected")
	case errors.Is(err, wallet.ErrUploadsUnsupported):
		return apperrors.NotSupportedError(err, "this wallet cannot publish records")
	}
	return apperrors.DependencyError(err, message)
}
