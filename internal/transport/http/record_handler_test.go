package http

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"ctview/internal/cache"
	apierrors "ctview/internal/errors"
	"ctview/internal/record"
	"ctview/internal/services"
	"ctview/internal/validation"
)

const testCFG = `SUB-MAIN,REC1,1999
3,2A,1D
1,VA,A,,V,0.1,0,0,-32767,32767,132000,110,S
2,IA,A,,A,1,0,0,-32767,32767,600,5,S
1,TRIP,A,,0
50
1
1000,6
12/05/2023,10:30:00.000000
12/05/2023,10:30:00.500000
ASCII
1
`

const testDAT = `1,0,100,10,1
2,1000,-100,20,1
3,2000,50,30,0
4,3000,0,40,0
5,4000,80,50,1
6,5000,-80,60,1
`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	bundles := validation.NewBundleValidator(nil, 1<<20)
	svc := services.NewRecordService(
		record.NewAdapter(nil),
		cache.NewRecordCache(4),
		bundles,
		8,
		nil,
		nil,
	)
	handler := NewRecordHandler(svc, bundles, testLogger(), apierrors.NewErrorHandler(nil), 1<<20)

	r := chi.NewRouter()
	r.Mount("/api/records", handler.Routes())

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func multipartBundle(t *testing.T, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, content := range files {
		fw, err := mw.CreateFormFile(name, name+".bin")
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func uploadRecord(t *testing.T, srv *httptest.Server) string {
	t.Helper()

	body, contentType := multipartBundle(t, map[string]string{
		"cfg": testCFG,
		"dat": testDAT,
		"hdr": "relay header",
	})
	resp, err := http.Post(srv.URL+"/api/records", contentType, body)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	require.NotEmpty(t, created.ID)
	return created.ID
}

func getJSON(t *testing.T, url string, wantStatus int) map[string]interface{} {
	t.Helper()

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, wantStatus, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestUploadRecord(t *testing.T) {
	srv := newTestServer(t)

	body, contentType := multipartBundle(t, map[string]string{
		"cfg": testCFG,
		"dat": testDAT,
		"hdr": "relay header",
		"inf": "extra info",
	})
	resp, err := http.Post(srv.URL+"/api/records", contentType, body)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.Equal(t, "SUB-MAIN", created["station"])
	assert.Equal(t, float64(6), created["samples"])
	assert.Equal(t, []interface{}{"VA", "IA"}, created["analog_channels"])
	assert.Equal(t, "relay header", created["header_text"])
}

func TestUploadRecord_RoleFromExtension(t *testing.T) {
	srv := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range []struct{ field, name, content string }{
		{"files", "fault.cfg", testCFG},
		{"files", "fault.dat", testDAT},
	} {
		fw, err := mw.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(f.content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	resp, err := http.Post(srv.URL+"/api/records", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestUploadRecord_MissingDAT(t *testing.T) {
	srv := newTestServer(t)

	body, contentType := multipartBundle(t, map[string]string{"cfg": testCFG})
	resp, err := http.Post(srv.URL+"/api/records", contentType, body)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "application/problem+json", resp.Header.Get("Content-Type"))
}

func TestUploadRecord_UndecodableBundle(t *testing.T) {
	srv := newTestServer(t)

	body, contentType := multipartBundle(t, map[string]string{
		"cfg": "SUB,REC\nnot,a,count,line\nmore lines\n",
		"dat": testDAT,
	})
	resp, err := http.Post(srv.URL+"/api/records", contentType, body)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestGetRecord(t *testing.T) {
	srv := newTestServer(t)
	id := uploadRecord(t, srv)

	body := getJSON(t, srv.URL+"/api/records/"+id, http.StatusOK)
	assert.Equal(t, id, body["id"])
	assert.Equal(t, "SUB-MAIN", body["station"])
}

func TestGetRecord_NotFound(t *testing.T) {
	srv := newTestServer(t)

	body := getJSON(t, srv.URL+"/api/records/unknown-id", http.StatusNotFound)
	assert.Equal(t, apierrors.TypeNotFound, body["type"])
}

func TestGetSeries(t *testing.T) {
	srv := newTestServer(t)
	id := uploadRecord(t, srv)

	body := getJSON(t, srv.URL+"/api/records/"+id+"/series?unit=secondary&channels=VA,TRIP", http.StatusOK)
	assert.Equal(t, "secondary", body["unit"])

	channels := body["channels"].([]interface{})
	require.Len(t, channels, 2)

	first := channels[0].(map[string]interface{})
	assert.Equal(t, "VA", first["channel_id"])
	points := first["points"].([]interface{})
	require.Len(t, points, 6)
	assert.Equal(t, float64(10), points[0].(map[string]interface{})["value"])
}

func TestGetSeries_InvalidUnit(t *testing.T) {
	srv := newTestServer(t)
	id := uploadRecord(t, srv)

	body := getJSON(t, srv.URL+"/api/records/"+id+"/series?unit=tertiary", http.StatusBadRequest)
	assert.Equal(t, apierrors.TypeValidation, body["type"])
}

func TestGetFrequency(t *testing.T) {
	srv := newTestServer(t)
	id := uploadRecord(t, srv)

	body := getJSON(t, srv.URL+"/api/records/"+id+"/frequency?channel=VA", http.StatusOK)
	assert.Equal(t, "VA", body["channel"])

	t.Run("missing channel parameter", func(t *testing.T) {
		getJSON(t, srv.URL+"/api/records/"+id+"/frequency", http.StatusBadRequest)
	})

	t.Run("unknown channel", func(t *testing.T) {
		getJSON(t, srv.URL+"/api/records/"+id+"/frequency?channel=VX", http.StatusNotFound)
	})
}

func TestGetRMS(t *testing.T) {
	srv := newTestServer(t)
	id := uploadRecord(t, srv)

	body := getJSON(t, srv.URL+"/api/records/"+id+"/rms", http.StatusOK)
	channels := body["channels"].([]interface{})
	require.Len(t, channels, 2, "analog channels only")
}

func TestGetEvents(t *testing.T) {
	srv := newTestServer(t)
	id := uploadRecord(t, srv)

	body := getJSON(t, srv.URL+"/api/records/"+id+"/events?signals=TRIP", http.StatusOK)
	intervals := body["intervals"].([]interface{})
	require.Len(t, intervals, 2)

	first := intervals[0].(map[string]interface{})
	assert.Equal(t, "TRIP", first["signal"])
}

func TestGetChannels(t *testing.T) {
	srv := newTestServer(t)
	id := uploadRecord(t, srv)

	body := getJSON(t, srv.URL+"/api/records/"+id+"/channels", http.StatusOK)
	assert.Equal(t, []interface{}{"VA", "IA"}, body["analog"])

	digital := body["digital"].([]interface{})
	require.Len(t, digital, 1)
	assert.Equal(t, "TRIP", digital[0].(map[string]interface{})["id"])
}

func TestExportSeries_CSV(t *testing.T) {
	srv := newTestServer(t)
	id := uploadRecord(t, srv)

	resp, err := http.Get(srv.URL + "/api/records/" + id + "/export?format=csv&unit=secondary")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "SUB-MAIN_secondary.csv")

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte{0xEF, 0xBB, 0xBF}))
	assert.Contains(t, buf.String(), "DateTime,VA,IA,TRIP")
}

func TestExportSeries_XLSX(t *testing.T) {
	srv := newTestServer(t)
	id := uploadRecord(t, srv)

	resp, err := http.Get(srv.URL + "/api/records/" + id + "/export?format=xlsx")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "spreadsheetml")

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	assert.ElementsMatch(t, []string{"Primary", "Secondary"}, f.GetSheetList())
}

func TestExportSeries_InvalidFormat(t *testing.T) {
	srv := newTestServer(t)
	id := uploadRecord(t, srv)

	getJSON(t, srv.URL+"/api/records/"+id+"/export?format=pdf", http.StatusBadRequest)
}
