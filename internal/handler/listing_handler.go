package handler

import (
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/FanzeeApp/sotvolbackend/internal/repository"
	"github.com/FanzeeApp/sotvolbackend/internal/service"
)

// ListingHandler exposes the listing CRUD surface. Mutating routes are
// registered on the admin group, reads on the public group.
type ListingHandler struct {
	Service *service.ListingService
}

func (h *ListingHandler) RegisterRoutes(public, admin *gin.RouterGroup) {
	public.GET("/listings", h.List)
	public.GET("/listings/:code", h.GetByCode)

	admin.POST("/listings", h.Create)
	admin.PATCH("/listings/:code", h.Update)
	admin.DELETE("/listings/:code", h.Delete)
}

// GET /api/listings?status=...&include_sold=...&limit=...&all=...
func (h *ListingHandler) List(c *gin.Context) {
	f := repository.ListFilter{
		Status: c.Query("status"),
	}
	f.IncludeSold, _ = strconv.ParseBool(c.DefaultQuery("include_sold", "false"))
	f.All, _ = strconv.ParseBool(c.DefaultQuery("all", "false"))
	f.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	f.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))

	listings, err := h.Service.List(c.Request.Context(), f)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, listings)
}

// GET /api/listings/:code
func (h *ListingHandler) GetByCode(c *gin.Context) {
	code, err := strconv.Atoi(c.Param("code"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "code must be a number"})
		return
	}

	listing, err := h.Service.Get(c.Request.Context(), code)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, listing)
}

// POST /api/listings — multipart: descriptive fields plus images[] and an
// optional video.
func (h *ListingHandler) Create(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart form required"})
		return
	}

	price, err := decimal.NewFromString(c.PostForm("price"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "price must be a number"})
		return
	}
	rating, _ := strconv.Atoi(c.PostForm("rating"))
	exchange, _ := strconv.ParseBool(c.PostForm("exchange"))

	in := service.CreateListingInput{
		Mode:           c.PostForm("mode"),
		Model:          c.PostForm("model"),
		Name:           c.PostForm("name"),
		Condition:      c.PostForm("condition"),
		Storage:        c.PostForm("storage"),
		Color:          c.PostForm("color"),
		Box:            c.PostForm("box"),
		Battery:        c.PostForm("battery"),
		Warranty:       c.PostForm("warranty"),
		Price:          price,
		PriceFormatted: c.PostForm("price_formatted"),
		Exchange:       exchange,
		Rating:         rating,
	}

	for _, fh := range form.File["images"] {
		upload, err := readUpload(fh)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read image " + fh.Filename})
			return
		}
		in.Images = append(in.Images, upload)
	}
	if videos := form.File["video"]; len(videos) > 0 {
		upload, err := readUpload(videos[0])
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read video"})
			return
		}
		in.Video = &upload
	}

	listing, warning, err := h.Service.Create(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	if warning != "" {
		c.JSON(http.StatusCreated, gin.H{"listing": listing, "warning": warning})
		return
	}
	c.JSON(http.StatusCreated, listing)
}

// PATCH /api/listings/:code
func (h *ListingHandler) Update(c *gin.Context) {
	code, err := strconv.Atoi(c.Param("code"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "code must be a number"})
		return
	}

	var req struct {
		Mode           *string          `json:"mode"`
		Model          *string          `json:"model"`
		Name           *string          `json:"name"`
		Condition      *string          `json:"condition"`
		Storage        *string          `json:"storage"`
		Color          *string          `json:"color"`
		Box            *string          `json:"box"`
		Battery        *string          `json:"battery"`
		Warranty       *string          `json:"warranty"`
		Price          *decimal.Decimal `json:"price"`
		PriceFormatted *string          `json:"price_formatted"`
		Exchange       *bool            `json:"exchange"`
		Rating         *int             `json:"rating"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	listing, err := h.Service.Update(c.Request.Context(), code, service.UpdateListingInput{
		Mode:           req.Mode,
		Model:          req.Model,
		Name:           req.Name,
		Condition:      req.Condition,
		Storage:        req.Storage,
		Color:          req.Color,
		Box:            req.Box,
		Battery:        req.Battery,
		Warranty:       req.Warranty,
		Price:          req.Price,
		PriceFormatted: req.PriceFormatted,
		Exchange:       req.Exchange,
		Rating:         req.Rating,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, listing)
}

// DELETE /api/listings/:code
func (h *ListingHandler) Delete(c *gin.Context) {
	code, err := strconv.Atoi(c.Param("code"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "code must be a number"})
		return
	}

	if err := h.Service.Delete(c.Request.Context(), code); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": code})
}

func readUpload(fh *multipart.FileHeader) (service.MediaUpload, error) {
	f, err := fh.Open()
	if err != nil {
		return service.MediaUpload{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return service.MediaUpload{}, err
	}
	return service.MediaUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
