package httpapi

import (
	"net/http"
	"strconv"

	"github.com/dkravtsov/shelfmark/internal/common"
	"github.com/dkravtsov/shelfmark/internal/server/repositories/sharedlinks"
	"github.com/dkravtsov/shelfmark/internal/server/services"
)

func (s *Server) handleCreateLink(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := userIDFromContext(r.Context())
	if !ok {
		writeError(w, common.ErrorUnauthorized)
		return
	}

	var req createLinkRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	link, err := s.links.Create(r.Context(), ownerID, req.ItemID, req.ExpiresInHours, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := toLinkResponse(link, s.links.PublicURL(link.Token))
	if item, err := s.links.GetOwnedItem(r.Context(), link.ItemID, ownerID); err == nil {
		resp.Item = &itemSummary{Kind: item.Kind, Title: item.Title}
	}

	s.logger.Info(r.Context(), "shared link created", "linkID", link.ID, "itemID", link.ItemID)
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListLinks(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := userIDFromContext(r.Context())
	if !ok {
		writeError(w, common.ErrorUnauthorized)
		return
	}

	filter, err := parseListFilter(r)
	if err != nil {
		writeError(w, err)
		return
	}

	links, total, err := s.links.List(r.Context(), ownerID, filter)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := linkListResponse{
		Links: make([]linkResponse, 0, len(links)),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	for _, l := range links {
		resp.Links = append(resp.Links, toLinkResponse(l, s.links.PublicURL(l.Token)))
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleEditLink(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := userIDFromContext(r.Context())
	if !ok {
		writeError(w, common.ErrorUnauthorized)
		return
	}

	var req editLinkRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	link, err := s.links.Edit(r.Context(), r.PathValue("id"), ownerID, services.EditParams{
		ExpiresInHours: req.ExpiresInHours,
		Password: services.OptionalSecret{
			Set:   req.Password.Set,
			Value: req.Password.Value,
		},
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toLinkResponse(link, s.links.PublicURL(link.Token)))
}

func (s *Server) handleRevokeLink(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := userIDFromContext(r.Context())
	if !ok {
		writeError(w, common.ErrorUnauthorized)
		return
	}

	if err := s.links.Revoke(r.Context(), r.PathValue("id"), ownerID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "link revoked"})
}

func (s *Server) handleDeleteLink(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := userIDFromContext(r.Context())
	if !ok {
		writeError(w, common.ErrorUnauthorized)
		return
	}

	if err := s.links.PermanentlyDelete(r.Context(), r.PathValue("id"), ownerID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "link deleted"})
}

func parseListFilter(r *http.Request) (sharedlinks.ListFilter, error) {
	filter := sharedlinks.ListFilter{Page: 1, Limit: 20}
	q := r.URL.Query()

	if v := q.Get("itemId"); v != "" {
		filter.ItemID = &v
	}
	if v := q.Get("revoked"); v != "" {
		revoked, err := strconv.ParseBool(v)
		if err != nil {
			return filter, common.ErrorValidation
		}
		filter.Revoked = &revoked
	}
	if v := q.Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			return filter, common.ErrorValidation
		}
		filter.Page = page
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			return filter, common.ErrorValidation
		}
		filter.Limit = limit
	}

	return filter, nil
}
