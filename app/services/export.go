package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/pkg/storage"
)

var exportHeader = []string{"id", "title", "price", "vendor_id", "category_id", "tags", "rating", "likes", "created_at"}

// ExportCSV writes the whole catalog to w, one product per row, and returns
// the number of products written.
func (s *ProductService) ExportCSV(ctx context.Context, w io.Writer) (int, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return 0, err
	}

	written := 0
	for page := 1; ; page++ {
		batch, err := s.repo.Search(ctx, repositories.ProductFilter{}, page, config.MaxPageSize())
		if err != nil {
			return written, fmt.Errorf("export: page %d: %w", page, err)
		}
		ids := make([]uint, 0, len(batch.Items))
		for _, p := range batch.Items {
			ids = append(ids, p.ID)
		}
		stats, err := s.repo.Stats(ctx, ids)
		if err != nil {
			return written, fmt.Errorf("export: stats: %w", err)
		}
		for i := range batch.Items {
			if err := cw.Write(exportRow(&batch.Items[i], stats[batch.Items[i].ID])); err != nil {
				return written, err
			}
			written++
		}
		if !batch.HasNext() {
			break
		}
	}

	cw.Flush()
	return written, cw.Error()
}

// ExportTo writes the catalog CSV to path on disk.
func (s *ProductService) ExportTo(ctx context.Context, disk storage.Disk, path string) (int, error) {
	var buf bytes.Buffer
	n, err := s.ExportCSV(ctx, &buf)
	if err != nil {
		return 0, err
	}
	if err := disk.Put(ctx, path, &buf); err != nil {
		return 0, fmt.Errorf("export: write %s: %w", path, err)
	}
	return n, nil
}

func exportRow(p *models.Product, st repositories.ProductStats) []string {
	category := ""
	if p.CategoryID != nil {
		category = strconv.FormatUint(uint64(*p.CategoryID), 10)
	}
	tags := make([]string, 0, len(p.Tags))
	for _, t := range p.Tags {
		tags = append(tags, t.Title)
	}
	rating := ""
	if st.Rating != nil {
		rating = strconv.FormatFloat(*st.Rating, 'f', 2, 64)
	}
	return []string{
		strconv.FormatUint(uint64(p.ID), 10),
		p.Title,
		strconv.FormatInt(p.Price, 10),
		strconv.FormatUint(uint64(p.VendorID), 10),
		category,
		strings.Join(tags, "|"),
		rating,
		strconv.FormatInt(st.Likes, 10),
		p.CreatedAt.UTC().Format(time.RFC3339),
	}
}
