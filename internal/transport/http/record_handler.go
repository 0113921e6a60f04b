package http

import (
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	apierrors "ctview/internal/errors"
	"ctview/internal/exporter"
	"ctview/internal/services"
	"ctview/internal/validation"
	"ctview/pkg/contracts/domain"
)

// RecordHandler handles record upload and analysis requests.
type RecordHandler struct {
	service      RecordServiceInterface
	bundles      *validation.BundleValidator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	validate     *validator.Validate
	maxMemory    int64
}

// NewRecordHandler creates a record handler.
func NewRecordHandler(
	service RecordServiceInterface,
	bundles *validation.BundleValidator,
	logger *slog.Logger,
	errorHandler *apierrors.ErrorHandler,
	maxMemory int64,
) *RecordHandler {
	return &RecordHandler{
		service:      service,
		bundles:      bundles,
		logger:       logger.With(slog.String("component", "record_handler")),
		errorHandler: errorHandler,
		validate:     validator.New(),
		maxMemory:    maxMemory,
	}
}

// Routes returns the record routes.
func (h *RecordHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/", h.UploadRecord)
	r.Route("/{recordID}", func(r chi.Router) {
		r.Use(h.RecordCtx)
		r.Get("/", h.GetRecord)
		r.Get("/series", h.GetSeries)
		r.Get("/frequency", h.GetFrequency)
		r.Get("/rms", h.GetRMS)
		r.Get("/events", h.GetEvents)
		r.Get("/channels", h.GetChannels)
		r.Get("/export", h.ExportSeries)
	})
	return r
}

// RecordCtx validates the record id parameter.
func (h *RecordHandler) RecordCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "recordID") == "" {
			h.errorHandler.HandleError(w, r, apierrors.NewValidationError("record id is required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// recordResponse summarizes one loaded record for the frontend.
type recordResponse struct {
	ID              string                      `json:"id"`
	Station         string                      `json:"station"`
	Device          string                      `json:"device,omitempty"`
	Start           time.Time                   `json:"start"`
	LineFrequency   float64                     `json:"line_frequency"`
	Samples         int                         `json:"samples"`
	SamplePeriod    float64                     `json:"sample_period_seconds"`
	AnalogChannels  []string                    `json:"analog_channels"`
	DigitalChannels []domain.DigitalChannelMeta `json:"digital_channels"`
	HeaderText      string                      `json:"header_text,omitempty"`
	InfoText        string                      `json:"info_text,omitempty"`
}

func newRecordResponse(loaded *services.LoadedRecord) recordResponse {
	rec := loaded.Bundle.Record
	return recordResponse{
		ID:              loaded.ID,
		Station:         rec.Station,
		Device:          rec.Device,
		Start:           rec.Start,
		LineFrequency:   rec.LineFrequency,
		Samples:         rec.SampleCount(),
		SamplePeriod:    rec.SamplePeriod(),
		AnalogChannels:  rec.AnalogIDs(),
		DigitalChannels: loaded.Bundle.Digital,
		HeaderText:      loaded.HeaderText,
		InfoText:        loaded.InfoText,
	}
}

// UploadRecord handles POST /api/records: a multipart COMTRADE bundle.
// Files may arrive under the field names cfg/dat/hdr/inf or under any
// field with the extension deciding the role, matching how recorders
// name their exports.
func (h *RecordHandler) UploadRecord(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxMemory); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.NewValidationError("invalid multipart upload: "+err.Error()))
		return
	}
	defer r.MultipartForm.RemoveAll()

	in, err := h.collectBundle(r.MultipartForm)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	loaded, err := h.service.Load(r.Context(), *in)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, newRecordResponse(loaded))
}

// collectBundle maps uploaded files to their bundle roles by field name
// first, file extension second.
func (h *RecordHandler) collectBundle(form *multipart.Form) (*services.UploadInput, error) {
	in := &services.UploadInput{}
	for field, headers := range form.File {
		for _, fh := range headers {
			role := strings.ToLower(field)
			if _, ok := map[string]bool{"cfg": true, "dat": true, "hdr": true, "inf": true}[role]; !ok {
				ext, err := h.bundles.ValidateExtension(fh.Filename)
				if err != nil {
					return nil, err
				}
				role = ext
			}
			content, err := readMultipartFile(fh)
			if err != nil {
				return nil, err
			}
			switch role {
			case "cfg":
				in.CFG = content
			case "dat":
				in.DAT = content
			case "hdr":
				in.HDR = content
			case "inf":
				in.INF = content
			}
		}
	}
	return in, nil
}

func readMultipartFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, apierrors.NewValidationError("failed to open uploaded file " + fh.Filename)
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		return nil, apierrors.NewValidationError("failed to read uploaded file " + fh.Filename)
	}
	return content, nil
}

// GetRecord handles GET /api/records/{recordID}.
func (h *RecordHandler) GetRecord(w http.ResponseWriter, r *http.Request) {
	loaded, err := h.service.Get(r.Context(), chi.URLParam(r, "recordID"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, newRecordResponse(loaded))
}

// seriesQuery is the validated query surface of the series-shaped
// endpoints.
type seriesQuery struct {
	Unit string `validate:"omitempty,oneof=primary secondary"`
}

// GetSeries handles GET /api/records/{recordID}/series.
func (h *RecordHandler) GetSeries(w http.ResponseWriter, r *http.Request) {
	q := seriesQuery{Unit: r.URL.Query().Get("unit")}
	if err := h.validate.Struct(q); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.NewValidationError("unit must be primary or secondary"))
		return
	}

	set, err := h.service.Series(r.Context(), chi.URLParam(r, "recordID"),
		domain.UnitSystem(q.Unit), queryList(r, "channels"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, set)
}

// GetFrequency handles GET /api/records/{recordID}/frequency.
func (h *RecordHandler) GetFrequency(w http.ResponseWriter, r *http.Request) {
	channel := r.URL.Query().Get("channel")
	if channel == "" {
		h.errorHandler.HandleError(w, r, apierrors.NewValidationError("channel parameter is required"))
		return
	}

	points, err := h.service.Frequency(r.Context(), chi.URLParam(r, "recordID"), channel)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"channel": channel,
		"points":  points,
	})
}

// GetRMS handles GET /api/records/{recordID}/rms.
func (h *RecordHandler) GetRMS(w http.ResponseWriter, r *http.Request) {
	q := seriesQuery{Unit: r.URL.Query().Get("unit")}
	if err := h.validate.Struct(q); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.NewValidationError("unit must be primary or secondary"))
		return
	}

	set, err := h.service.RMS(r.Context(), chi.URLParam(r, "recordID"),
		domain.UnitSystem(q.Unit), queryList(r, "channels"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, set)
}

// GetEvents handles GET /api/records/{recordID}/events.
func (h *RecordHandler) GetEvents(w http.ResponseWriter, r *http.Request) {
	intervals, err := h.service.Events(r.Context(), chi.URLParam(r, "recordID"), queryList(r, "signals"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"intervals": intervals,
	})
}

// GetChannels handles GET /api/records/{recordID}/channels.
func (h *RecordHandler) GetChannels(w http.ResponseWriter, r *http.Request) {
	loaded, err := h.service.Get(r.Context(), chi.URLParam(r, "recordID"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"analog":  loaded.Bundle.Record.AnalogIDs(),
		"digital": loaded.Bundle.Digital,
	})
}

// exportQuery is the validated query surface of the export endpoint.
type exportQuery struct {
	Format string `validate:"omitempty,oneof=csv xlsx"`
	Unit   string `validate:"omitempty,oneof=primary secondary"`
}

// ExportSeries handles GET /api/records/{recordID}/export, streaming the
// scaled series as CSV or an Excel workbook.
func (h *RecordHandler) ExportSeries(w http.ResponseWriter, r *http.Request) {
	q := exportQuery{
		Format: r.URL.Query().Get("format"),
		Unit:   r.URL.Query().Get("unit"),
	}
	if err := h.validate.Struct(q); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.NewValidationError("format must be csv or xlsx, unit must be primary or secondary"))
		return
	}
	recordID := chi.URLParam(r, "recordID")
	channels := queryList(r, "channels")

	loaded, err := h.service.Get(r.Context(), recordID)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	station := strings.ReplaceAll(loaded.Bundle.Record.Station, " ", "_")

	switch q.Format {
	case "xlsx":
		sets, err := h.exportSets(r, recordID, q.Unit, channels)
		if err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="`+station+`.xlsx"`)
		if err := exporter.WriteSeriesWorkbook(w, sets...); err != nil {
			h.logger.ErrorContext(r.Context(), "workbook export failed",
				slog.String("record_id", recordID),
				slog.String("error", err.Error()))
		}
	default:
		unit := domain.UnitSystem(q.Unit)
		if q.Unit == "" {
			unit = domain.UnitSecondary
		}
		set, err := h.service.Series(r.Context(), recordID, unit, channels)
		if err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="`+station+`_`+string(unit)+`.csv"`)
		if err := exporter.WriteSeriesCSV(w, set, exporter.CSVOptions{BOMPrefix: true}); err != nil {
			h.logger.ErrorContext(r.Context(), "csv export failed",
				slog.String("record_id", recordID),
				slog.String("error", err.Error()))
		}
	}
}

// exportSets resolves which unit systems an export covers: the requested
// one, or both when unspecified.
func (h *RecordHandler) exportSets(r *http.Request, recordID, unit string, channels []string) ([]domain.SeriesSet, error) {
	units := []domain.UnitSystem{domain.UnitPrimary, domain.UnitSecondary}
	if unit != "" {
		units = []domain.UnitSystem{domain.UnitSystem(unit)}
	}
	sets := make([]domain.SeriesSet, 0, len(units))
	for _, u := range units {
		set, err := h.service.Series(r.Context(), recordID, u, channels)
		if err != nil {
			return nil, err
		}
		sets = append(sets, set)
	}
	return sets, nil
}

// queryList gathers a multi-valued query parameter, splitting any
// comma-separated values.
func queryList(r *http.Request, key string) []string {
	var out []string
	for _, raw := range r.URL.Query()[key] {
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}
