package handler

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mcoot/rpgroster-go/internal/api/apierr"
	"github.com/mcoot/rpgroster-go/internal/api/middleware"
	"github.com/mcoot/rpgroster-go/internal/api/request"
	"github.com/mcoot/rpgroster-go/internal/api/response"
	"github.com/mcoot/rpgroster-go/internal/model"
	"github.com/mcoot/rpgroster-go/internal/services/character"
)

// CharacterHandler handles character endpoints
type CharacterHandler struct {
	characterService *character.Service
	errors           *apierr.Writer
}

// NewCharacterHandler creates a new character handler
func NewCharacterHandler(characterService *character.Service, errors *apierr.Writer) *CharacterHandler {
	return &CharacterHandler{
		characterService: characterService,
		errors:           errors,
	}
}

// Create handles POST /api/characters
func (h *CharacterHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateCharacterRequest
	if err := request.Decode(r, &req); err != nil {
		h.errors.Write(w, r, err)
		return
	}

	claims := middleware.MustGetClaims(r.Context())
	c, err := h.characterService.Create(r.Context(), createInput(req), claims.UserID)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.OK("Character created", response.CharacterFromModel(c)))
}

// List handles GET /api/characters
func (h *CharacterHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.characterService.List(r.Context(), listQuery(r.URL.Query()))
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.Envelope{
		Success:    true,
		Data:       response.CharactersFromModel(page.Characters),
		Pagination: response.PaginationFromModel(page.PageInfo),
	})
}

// Get handles GET /api/characters/{id}
func (h *CharacterHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.characterService.Get(r.Context(), characterID(r))
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.OK("", response.CharacterFromModel(c)))
}

// Update handles PUT /api/characters/{id}
func (h *CharacterHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req request.UpdateCharacterRequest
	if err := request.Decode(r, &req); err != nil {
		h.errors.Write(w, r, err)
		return
	}

	c, err := h.characterService.Update(r.Context(), characterID(r), characterPatch(req))
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.OK("Character updated", response.CharacterFromModel(c)))
}

// Delete handles DELETE /api/characters/{id}
func (h *CharacterHandler) Delete(w http.ResponseWriter, r *http.Request) {
	c, err := h.characterService.Delete(r.Context(), characterID(r))
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.OK("Character deleted", response.CharacterFromModel(c)))
}

// BulkDelete handles POST /api/characters/bulk-delete
func (h *CharacterHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	var req request.BulkDeleteRequest
	if err := request.Decode(r, &req); err != nil {
		h.errors.Write(w, r, err)
		return
	}

	ids := make([]model.CharacterID, 0, len(req.IDs))
	for _, id := range req.IDs {
		ids = append(ids, model.CharacterID(id))
	}

	n, err := h.characterService.BulkDelete(r.Context(), ids)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.Envelope{
		Success:      true,
		Message:      fmt.Sprintf("%d characters deleted", n),
		DeletedCount: &n,
	})
}

// LevelUp handles POST /api/characters/{id}/level-up
func (h *CharacterHandler) LevelUp(w http.ResponseWriter, r *http.Request) {
	c, err := h.characterService.LevelUp(r.Context(), characterID(r))
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.OK("Level up!", response.CharacterFromModel(c)))
}

// AddExperience handles POST /api/characters/{id}/add-experience
func (h *CharacterHandler) AddExperience(w http.ResponseWriter, r *http.Request) {
	var req request.AddExperienceRequest
	if err := request.Decode(r, &req); err != nil {
		h.errors.Write(w, r, err)
		return
	}

	c, err := h.characterService.AddExperience(r.Context(), characterID(r), req.Experience)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.OK("Experience added", response.CharacterFromModel(c)))
}

// Battle handles POST /api/characters/battle
func (h *CharacterHandler) Battle(w http.ResponseWriter, r *http.Request) {
	var req request.BattleRequest
	if err := request.Decode(r, &req); err != nil {
		h.errors.Write(w, r, err)
		return
	}

	result, err := h.characterService.Battle(r.Context(), model.CharacterID(req.Char1ID), model.CharacterID(req.Char2ID))
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.OK("Battle finished", response.BattleDataFromResult(result)))
}

// Leaderboard handles GET /api/leaderboard
func (h *CharacterHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := h.characterService.Leaderboard(r.Context(), limit)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.OK("", response.LeaderboardFromModel(entries)))
}

func characterID(r *http.Request) model.CharacterID {
	return model.CharacterID(mux.Vars(r)["id"])
}

// listQuery reads list parameters. Numbers that do not parse are treated as absent.
func listQuery(v url.Values) model.CharacterQuery {
	atoi := func(key string) int {
		n, _ := strconv.Atoi(v.Get(key))
		return n
	}

	q := model.CharacterQuery{
		Page:      atoi("page"),
		Limit:     atoi("limit"),
		SortBy:    model.SortField(v.Get("sortBy")),
		SortOrder: model.SortOrder(v.Get("sortOrder")),
		Filter: model.CharacterFilter{
			Class:    model.Class(v.Get("class")),
			Rarity:   model.Rarity(v.Get("rarity")),
			MinLevel: atoi("minLevel"),
			MaxLevel: atoi("maxLevel"),
			Search:   v.Get("search"),
			UserID:   model.UserID(v.Get("userId")),
		},
	}
	if active, err := strconv.ParseBool(v.Get("isActive")); err == nil {
		q.Filter.IsActive = &active
	}
	return q
}

func createInput(req request.CreateCharacterRequest) character.CreateInput {
	in := character.CreateInput{
		Name:       req.Name,
		Class:      model.Class(req.Class),
		Level:      req.Level,
		Experience: req.Experience,
		Skills:     req.Skills,
		IsActive:   req.IsActive,
	}
	if req.Rarity != nil {
		rarity := model.Rarity(*req.Rarity)
		in.Rarity = &rarity
	}
	if s := req.Stats; s != nil {
		in.Stats = &model.Stats{
			Health:  *s.Health,
			Attack:  *s.Attack,
			Defense: *s.Defense,
			Speed:   *s.Speed,
			Mana:    *s.Mana,
		}
	}
	if req.UserID != nil {
		userID := model.UserID(*req.UserID)
		in.UserID = &userID
	}
	return in
}

func characterPatch(req request.UpdateCharacterRequest) model.CharacterPatch {
	patch := model.CharacterPatch{
		Name:       req.Name,
		Level:      req.Level,
		Experience: req.Experience,
		Skills:     req.Skills,
		IsActive:   req.IsActive,
	}
	if req.Class != nil {
		class := model.Class(*req.Class)
		patch.Class = &class
	}
	if req.Rarity != nil {
		rarity := model.Rarity(*req.Rarity)
		patch.Rarity = &rarity
	}
	if req.UserID != nil {
		userID := model.UserID(*req.UserID)
		patch.UserID = &userID
	}
	if s := req.Stats; s != nil {
		patch.Stats = &model.StatsPatch{
			Health:  s.Health,
			Attack:  s.Attack,
			Defense: s.Defense,
			Speed:   s.Speed,
			Mana:    s.Mana,
		}
	}
	return patch
}
