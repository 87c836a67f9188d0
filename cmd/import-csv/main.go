package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"characterhub/internal/character"
	"characterhub/pkg/database"
	"characterhub/pkg/models"
	"characterhub/pkg/utils"
)

// import-csv creates one filler character per CSV row. Rows go through the
// same validation and id minting as POST /characters; ids in the file are ignored.
func main() {
	in := flag.String("in", "data/filler.csv", "input CSV path")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	cfg := utils.LoadConfig()
	db := database.MustOpen(cfg.DB)
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	// Create never consults the remote catalog
	svc := character.NewService(character.NewRepo(db), nil, nil)
	svc.RequireImage = cfg.RequireImage

	created, skipped, err := importFillers(ctx, svc, *in)
	if err != nil {
		log.Fatalf("import failed: %v", err)
	}
	log.Printf("imported %d filler characters from %s (%d rows skipped)", created, *in, skipped)
}

func importFillers(ctx context.Context, svc *character.Service, path string) (created, skipped int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := readHeader(r)
	if err != nil {
		return 0, 0, err
	}

	line := 1
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return created, skipped, err
		}
		line++
		if len(row) == 0 {
			continue
		}

		raw := models.RawCharacter{
			Name:     valueAt(header, row, "name"),
			Status:   valueAt(header, row, "status"),
			Species:  valueAt(header, row, "species"),
			Type:     valueAt(header, row, "type"),
			Gender:   valueAt(header, row, "gender"),
			Origin:   models.PlaceFromName(valueAt(header, row, "origin")),
			Location: models.PlaceFromName(valueAt(header, row, "location")),
			Image:    valueAt(header, row, "image"),
		}

		c, err := svc.Create(ctx, raw)
		if err != nil {
			var ve *character.ValidationError
			if errors.As(err, &ve) {
				log.Printf("line %d skipped: %v", line, ve)
				skipped++
				continue
			}
			return created, skipped, fmt.Errorf("line %d: %w", line, err)
		}
		log.Printf("line %d -> id %d (%s)", line, c.ID, c.Name)
		created++
	}

	return created, skipped, nil
}

func readHeader(r *csv.Reader) (map[string]int, error) {
	row, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	header := make(map[string]int, len(row))
	for i, col := range row {
		header[strings.ToLower(strings.TrimSpace(col))] = i
	}
	return header, nil
}

func valueAt(header map[string]int, row []string, key string) string {
	idx, ok := header[key]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
