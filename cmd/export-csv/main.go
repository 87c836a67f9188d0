package main

import (
	"context"
	"encoding/csv"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"characterhub/internal/character"
	"characterhub/pkg/database"
	"characterhub/pkg/models"
)

var header = []string{"id", "name", "status", "species", "type", "gender", "origin", "location", "image", "source", "deleted_at"}

// export-csv dumps the whole overlay, tombstones included.
func main() {
	out := flag.String("out", "data/characters.csv", "output CSV path")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	n, err := exportCharacters(ctx, character.NewRepo(db), *out)
	if err != nil {
		log.Fatalf("export characters failed: %v", err)
	}
	log.Printf("exported %d overlay characters to %s", n, *out)
}

func exportCharacters(ctx context.Context, repo *character.Repo, outPath string) (int, error) {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return 0, err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return 0, err
	}

	total := 0
	for _, source := range []string{models.SourceCanonical, models.SourceFiller} {
		rows, err := repo.Scan(ctx, character.ScanQuery{Source: source, IncludeDeleted: true})
		if err != nil {
			return total, err
		}
		for _, c := range rows {
			if err := w.Write([]string{
				strconv.FormatInt(c.ID, 10),
				c.Name, c.Status, c.Species, c.Type, c.Gender,
				c.Origin, c.Location, c.Image, c.Source, c.DeletedAt,
			}); err != nil {
				return total, err
			}
			total++
		}
	}

	w.Flush()
	return total, w.Error()
}
