// Package main populates a running dreamshops API with sample categories,
// products and images. Everything goes through the public HTTP endpoints so
// the seeded data passes the same validation as real traffic.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"math/rand"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"strconv"
	"time"

	"github.com/osamo/dreamshops/pkg/logger"
)

// --------------------------------------------------------------------------
// Configuration helpers
// --------------------------------------------------------------------------

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil && v > 0 {
		return v
	}
	return fallback
}

// --------------------------------------------------------------------------
// HTTP helpers
// --------------------------------------------------------------------------

type envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

var client = &http.Client{Timeout: 15 * time.Second}

func send(req *http.Request) (*envelope, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	var result envelope
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	return &result, nil
}

func httpPost(url string, body any) (*envelope, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal body: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return send(req)
}

func httpUpload(url string, productID int64, fileName string, content []byte) (*envelope, error) {
	body := new(bytes.Buffer)
	w := multipart.NewWriter(body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename=%q`, fileName))
	h.Set("Content-Type", "image/png")
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("create part: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return nil, fmt.Errorf("write part: %w", err)
	}
	if err := w.WriteField("productId", strconv.FormatInt(productID, 10)); err != nil {
		return nil, fmt.Errorf("write field: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	return send(req)
}

// swatch renders a small solid PNG so every product gets a real image.
func swatch(c color.RGBA) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for x := 0; x < 16; x++ {
		for y := 0; y < 16; y++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// --------------------------------------------------------------------------
// Sample data
// --------------------------------------------------------------------------

type productDef struct {
	Name  string
	Brand string
	Price string
}

var catalog = map[string][]productDef{
	"Shoes": {
		{"Runner", "Acme", "59.99"},
		{"Trail Pro", "Acme", "89.50"},
		{"Court Classic", "Stride", "74.00"},
	},
	"Electronics": {
		{"Pixel Buds", "Sonic", "129.00"},
		{"Desk Lamp", "Lumen", "34.90"},
		{"Action Camera", "Lens", "219.99"},
	},
	"Books": {
		{"Go in Practice", "Pagewise", "39.95"},
		{"Distributed Systems", "Pagewise", "54.00"},
	},
	"Home": {
		{"Cast Iron Pan", "Forge", "45.00"},
		{"Linen Throw", "Loom", "62.25"},
	},
}

// --------------------------------------------------------------------------
// Main
// --------------------------------------------------------------------------

func main() {
	log := logger.New("dreamshops-seed", getEnv("LOG_LEVEL", "info"), getEnv("ENVIRONMENT", "development"))

	baseURL := getEnv("API_URL", "http://localhost:8080/api/v1")
	copies := getEnvInt("SEED_COPIES", 1)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	log.Info("seeding catalog", slog.String("api_url", baseURL), slog.Int("copies", copies))

	var categories, products, images, failed int

	for categoryName, defs := range catalog {
		// Products create missing categories on their own; adding first
		// only keeps the log honest about what existed before.
		if _, err := httpPost(baseURL+"/categories/add", map[string]string{"name": categoryName}); err != nil {
			log.Debug("category not added", slog.String("category", categoryName), slog.String("error", err.Error()))
		} else {
			categories++
		}

		for i := 0; i < copies; i++ {
			for _, def := range defs {
				name := def.Name
				if copies > 1 {
					name = fmt.Sprintf("%s #%d", def.Name, i+1)
				}

				env, err := httpPost(baseURL+"/products/add", map[string]any{
					"name":        name,
					"brand":       def.Brand,
					"price":       def.Price,
					"inventory":   rng.Intn(100),
					"description": fmt.Sprintf("%s by %s", def.Name, def.Brand),
					"category":    map[string]string{"name": categoryName},
				})
				if err != nil {
					failed++
					log.Warn("product not added", slog.String("product", name), slog.String("error", err.Error()))
					continue
				}
				products++

				var created struct {
					ID int64 `json:"id"`
				}
				if err := json.Unmarshal(env.Data, &created); err != nil {
					failed++
					log.Warn("unreadable product response", slog.String("product", name), slog.String("error", err.Error()))
					continue
				}

				content, err := swatch(color.RGBA{R: uint8(rng.Intn(256)), G: uint8(rng.Intn(256)), B: uint8(rng.Intn(256)), A: 255})
				if err != nil {
					failed++
					continue
				}
				if _, err := httpUpload(baseURL+"/images/upload", created.ID, "swatch.png", content); err != nil {
					failed++
					log.Warn("image not uploaded", slog.Int64("product_id", created.ID), slog.String("error", err.Error()))
					continue
				}
				images++
			}
		}
	}

	log.Info("seed complete",
		slog.Int("categories", categories),
		slog.Int("products", products),
		slog.Int("images", images),
		slog.Int("failed", failed),
	)
	if failed > 0 {
		os.Exit(1)
	}
}
