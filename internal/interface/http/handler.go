package http

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/kissan-dost/internal/domain/advisor"
)

// Handler wires the HTTP transport to domain services.
type Handler struct {
	advisorSvc advisor.Service
	logger     *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(advisorSvc advisor.Service, logger *slog.Logger) *Handler {
	return &Handler{
		advisorSvc: advisorSvc,
		logger:     logger.With("component", "http.handler"),
	}
}

type chatForm struct {
	Message   string `form:"message" binding:"required"`
	Language  string `form:"language"`
	Latitude  string `form:"latitude"`
	Longitude string `form:"longitude"`
}

// Chat answers a farmer query, optionally with a crop image.
func (h *Handler) Chat(c *gin.Context) {
	var form chatForm
	if err := c.ShouldBind(&form); err != nil {
		abortWithError(c, formError(err, errMessage(err)))
		return
	}
	lat, err := optionalFloat("latitude", form.Latitude)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	lon, err := optionalFloat("longitude", form.Longitude)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	image, err := readImage(c)
	if err != nil {
		abortWithError(c, formError(err, "failed to read image"))
		return
	}

	resp, err := h.advisorSvc.Advise(c.Request.Context(), advisor.Request{
		Query:     form.Message,
		Language:  form.Language,
		Image:     image,
		Latitude:  lat,
		Longitude: lon,
	})
	if err != nil {
		abortWithError(c, advisorError(err))
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Prices returns the current mandi price table.
func (h *Handler) Prices(c *gin.Context) {
	c.JSON(http.StatusOK, h.advisorSvc.Prices(c.Request.Context()))
}

// Weather returns the provider forecast for a coordinate, or null.
func (h *Handler) Weather(c *gin.Context) {
	lat, err := optionalFloat("lat", c.Query("lat"))
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	lon, err := optionalFloat("lon", c.Query("lon"))
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	snapshot, err := h.advisorSvc.Weather(c.Request.Context(), lat, lon)
	if err != nil {
		abortWithError(c, advisorError(err))
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// Health is the liveness probe.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "kissan-dost"})
}

func readImage(c *gin.Context) (*advisor.Image, error) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, err
	}
	file, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	return &advisor.Image{
		Data:      data,
		MediaType: fileHeader.Header.Get("Content-Type"),
	}, nil
}

func optionalFloat(name, raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, errors.New(name + " must be a number")
	}
	return &v, nil
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
