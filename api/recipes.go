package api

import (
	"context"
	"errors"
	"image"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Skryldev/recipebook/core"
	apperrors "github.com/Skryldev/recipebook/errors"
	"github.com/Skryldev/recipebook/recipe"
	"github.com/Skryldev/recipebook/utils"
)

// RecipeService is the application surface the handlers need.
type RecipeService interface {
	List(ctx context.Context) ([]recipe.Recipe, error)
	Get(ctx context.Context, id int64) (*recipe.Recipe, error)
	ImageBytes(ctx context.Context, id int64) ([]byte, error)
	Save(ctx context.Context, d recipe.Draft) (*recipe.Recipe, error)
	Delete(ctx context.Context, id int64) error
	IngestPhoto(ctx context.Context, data []byte, title string) image.Image
}

// Handler serves the recipe routes.
type Handler struct {
	svc           RecipeService
	maxImageBytes int64
	chunkSize     int
}

// NewHandler creates a Handler. Uploads larger than maxImageBytes are
// rejected; 0 disables the limit.
func NewHandler(svc RecipeService, maxImageBytes int64, chunkSize int) *Handler {
	return &Handler{svc: svc, maxImageBytes: maxImageBytes, chunkSize: chunkSize}
}

func (h *Handler) ListRecipes(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]Recipe, 0, len(list))
	for i := range list {
		out = append(out, toAPI(&list[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) GetRecipe(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}
	rec, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAPI(rec))
}

func (h *Handler) GetRecipeImage(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}
	data, err := h.svc.ImageBytes(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	if len(data) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "recipe has no stored image"})
		return
	}
	c.Data(http.StatusOK, core.Format(utils.DetectFormat(data)).ContentType(), data)
}

func (h *Handler) CreateRecipe(c *gin.Context) {
	draft, err := h.bindDraft(c)
	if err != nil {
		writeError(c, err)
		return
	}
	rec, err := h.svc.Save(c.Request.Context(), draft)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toAPI(rec))
}

// UpdateRecipe replaces a recipe. Without a new photo the current image is
// kept.
func (h *Handler) UpdateRecipe(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}
	draft, err := h.bindDraft(c)
	if err != nil {
		writeError(c, err)
		return
	}
	draft.ID = id

	if draft.Image == nil {
		current, err := h.svc.Get(c.Request.Context(), id)
		if err != nil {
			writeError(c, err)
			return
		}
		draft.Image = current.Image
	}

	rec, err := h.svc.Save(c.Request.Context(), draft)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAPI(rec))
}

func (h *Handler) DeleteRecipe(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

var errBadRequest = errors.New("bad request")

func (h *Handler) bindDraft(c *gin.Context) (recipe.Draft, error) {
	date, err := parseDate(c.PostForm("date_added"))
	if err != nil {
		return recipe.Draft{}, errors.Join(errBadRequest, err)
	}
	d := recipe.Draft{
		Title:      c.PostForm("title"),
		Author:     c.PostForm("author"),
		Difficulty: c.PostForm("difficulty"),
		DateAdded:  date,
	}

	fh, err := c.FormFile("photo")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return d, nil
	}
	if err != nil {
		return recipe.Draft{}, errors.Join(errBadRequest, err)
	}
	if h.maxImageBytes > 0 && fh.Size > h.maxImageBytes {
		return recipe.Draft{}, apperrors.ErrTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return recipe.Draft{}, err
	}
	defer f.Close()

	data, err := utils.ReadAll(c.Request.Context(), f, h.maxImageBytes, h.chunkSize)
	if err != nil {
		return recipe.Draft{}, err
	}
	d.Image = h.svc.IngestPhoto(c.Request.Context(), data, d.Title)
	return d, nil
}

func recipeID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return 0, false
	}
	return id, true
}

func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, recipe.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, recipe.ErrInvalidDifficulty),
		errors.Is(err, recipe.ErrFutureDate),
		errors.Is(err, errBadRequest):
		status = http.StatusBadRequest
	case errors.Is(err, apperrors.ErrTooLarge):
		status = http.StatusRequestEntityTooLarge
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
