// Package api serves uploaded SimCity 2000 saves over HTTP.
package api

import (
	"bytes"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/samcharles93/sc2k/pkg/sc2"
	"golang.org/x/time/rate"
)

// DefaultMaxUpload bounds an upload when Options leaves it unset.
const DefaultMaxUpload = 8 << 20

type Options struct {
	MaxUploadBytes int64
	// RateLimit is requests per second per client; zero disables limiting.
	RateLimit  float64
	RateBurst  int
	JSONIndent bool
}

type Server struct {
	store     *CityStore
	limiter   *RateLimiter
	maxUpload int64
	indent    bool
	clock     func() time.Time
}

func NewServer(store *CityStore, opts Options) *Server {
	if store == nil {
		store = NewCityStore()
	}
	s := &Server{
		store:     store,
		maxUpload: opts.MaxUploadBytes,
		indent:    opts.JSONIndent,
		clock:     time.Now,
	}
	if s.maxUpload <= 0 {
		s.maxUpload = DefaultMaxUpload
	}
	if opts.RateLimit > 0 {
		s.limiter = NewRateLimiter(rate.Limit(opts.RateLimit), max(opts.RateBurst, 1))
	}
	return s
}

func (s *Server) Register(e *echo.Echo) {
	g := e.Group("/v1/cities")
	if s.limiter != nil {
		g.Use(s.limiter.Middleware)
	}
	g.POST("", s.handleUpload)
	g.GET("", s.handleList)
	g.GET("/:id", s.handleGetCity)
	g.DELETE("/:id", s.handleDelete)
	g.GET("/:id/name", s.handleName)
	g.GET("/:id/stats", s.handleStats)
	g.PUT("/:id/stats", s.handlePutStats)
	g.GET("/:id/chunks", s.handleChunks)
	g.GET("/:id/tiles/:y", s.handleRow)
	g.GET("/:id/tiles/:y/:x", s.handleTile)
	g.GET("/:id/file", s.handleFile)
}

func (s *Server) handleUpload(c *echo.Context) error {
	req := c.Request()
	req.Body = http.MaxBytesReader(c.Response(), req.Body, s.maxUpload)

	data, filename, err := readUpload(req)
	if err != nil {
		return writeFailure(c, err)
	}
	if len(data) == 0 {
		return writeBadRequest(c, "empty upload")
	}
	city, err := sc2.Decode(data)
	if err != nil {
		return writeFailure(c, err)
	}
	return c.JSON(http.StatusCreated, s.store.Add(city, filename, len(data), s.clock()))
}

// readUpload accepts either a multipart form with a "file" field or the
// save as the raw request body.
func readUpload(req *http.Request) ([]byte, string, error) {
	mediaType, _, _ := mime.ParseMediaType(req.Header.Get(echo.HeaderContentType))
	if mediaType != "multipart/form-data" {
		data, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, "", err
		}
		return data, req.URL.Query().Get("filename"), nil
	}

	f, hdr, err := req.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, "", err
		}
		return nil, "", newInvalidRequest("multipart upload needs a \"file\" field: " + err.Error())
	}
	defer func() { _ = f.Close() }()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, "", err
	}
	return data, hdr.Filename, nil
}

func (s *Server) handleList(c *echo.Context) error {
	return c.JSON(http.StatusOK, CityList{Object: "list", Data: s.store.List()})
}

func (s *Server) handleGetCity(c *echo.Context) error {
	var body []byte
	err := s.store.View(c.Param("id"), func(_ CitySummary, city *sc2.City) error {
		var err error
		body, err = s.marshal(city)
		return err
	})
	if err != nil {
		return s.viewFailure(c, err)
	}
	return writeRaw(c, http.StatusOK, echo.MIMEApplicationJSON, body)
}

func (s *Server) handleDelete(c *echo.Context) error {
	id := c.Param("id")
	if !s.store.Delete(id) {
		return writeNotFound(c, "city not found")
	}
	return c.JSON(http.StatusOK, DeleteResp{ID: id, Object: "city", Deleted: true})
}

func (s *Server) handleName(c *echo.Context) error {
	var resp NameResp
	err := s.store.View(c.Param("id"), func(_ CitySummary, city *sc2.City) error {
		resp.Name = city.Name
		return nil
	})
	if err != nil {
		return s.viewFailure(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleStats(c *echo.Context) error {
	var stats sc2.Stats
	err := s.store.View(c.Param("id"), func(_ CitySummary, city *sc2.City) error {
		stats = city.Stats
		return nil
	})
	if err != nil {
		return s.viewFailure(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

// handlePutStats merges the JSON body over the current record. Fields
// left out of the body keep their values.
func (s *Server) handlePutStats(c *echo.Context) error {
	body, err := io.ReadAll(http.MaxBytesReader(c.Response(), c.Request().Body, s.maxUpload))
	if err != nil {
		return writeFailure(c, err)
	}
	var stats sc2.Stats
	err = s.store.Update(c.Param("id"), func(city *sc2.City) error {
		next, err := decodeJSON(bytes.NewReader(body), city.Stats)
		if err != nil {
			return err
		}
		city.Stats = next
		stats = next
		return nil
	})
	if err != nil {
		return s.viewFailure(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

func (s *Server) handleChunks(c *echo.Context) error {
	var list ChunkList
	err := s.store.View(c.Param("id"), func(_ CitySummary, city *sc2.City) error {
		list = ChunkList{Object: "list", Data: chunkInfos(city.Container)}
		return nil
	})
	if err != nil {
		return s.viewFailure(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (s *Server) handleRow(c *echo.Context) error {
	y, err := gridIndex(c, "y")
	if err != nil {
		return writeFailure(c, err)
	}
	var row sc2.Row
	err = s.store.View(c.Param("id"), func(_ CitySummary, city *sc2.City) error {
		row = append(sc2.Row(nil), city.Map.Row(y)...)
		return nil
	})
	if err != nil {
		return s.viewFailure(c, err)
	}
	return s.writeJSONBytes(c, row)
}

func (s *Server) handleTile(c *echo.Context) error {
	y, err := gridIndex(c, "y")
	if err != nil {
		return writeFailure(c, err)
	}
	x, err := gridIndex(c, "x")
	if err != nil {
		return writeFailure(c, err)
	}
	var tile sc2.Tile
	err = s.store.View(c.Param("id"), func(_ CitySummary, city *sc2.City) error {
		tile = *city.Map.At(x, y)
		return nil
	})
	if err != nil {
		return s.viewFailure(c, err)
	}
	return s.writeJSONBytes(c, tile)
}

// handleFile re-encodes the save. mode is preserve (default), recompress
// or model.
func (s *Server) handleFile(c *echo.Context) error {
	mode := sc2.ModePreserve
	if q := c.QueryParam("mode"); q != "" {
		m, err := sc2.ParseMode(q)
		if err != nil {
			return writeBadRequest(c, err.Error())
		}
		mode = m
	}

	var (
		buf      bytes.Buffer
		filename string
	)
	err := s.store.View(c.Param("id"), func(sum CitySummary, city *sc2.City) error {
		filename = downloadName(sum)
		_, err := city.Encode(&buf, mode)
		return err
	})
	if err != nil {
		return s.viewFailure(c, err)
	}
	c.Response().Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	return writeRaw(c, http.StatusOK, "application/octet-stream", buf.Bytes())
}

func (s *Server) viewFailure(c *echo.Context, err error) error {
	if isNotFound(err) {
		return writeNotFound(c, "city not found")
	}
	return writeFailure(c, err)
}

func downloadName(sum CitySummary) string {
	if sum.Filename != "" {
		return sum.Filename
	}
	name := strings.TrimSpace(sum.Name)
	if name == "" {
		name = sum.ID
	}
	return name + ".sc2"
}
