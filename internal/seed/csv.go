package seed

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/models"
	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/repositories"
	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/services"
)

// ImportResult summarises a reward import
type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

// RewardCreator stores one validated reward
type RewardCreator interface {
	CreateReward(ctx context.Context, reward *models.Reward) (*models.Reward, error)
}

var _ RewardCreator = (*services.RewardService)(nil)

// ParseRewards reads a reward catalog from CSV. Rows that cannot be parsed are skipped and reported.
func ParseRewards(r io.Reader) ([]*models.Reward, *ImportResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read header: %w", err)
	}

	nameIdx := findColumnIndex(header, []string{"Name", "Reward", "Reward Name"})
	descIdx := findColumnIndex(header, []string{"Description", "Details"})
	categoryIdx := findColumnIndex(header, []string{"Category", "Reward Category"})
	pointsIdx := findColumnIndex(header, []string{"Points Required", "Points", "Cost"})
	stockIdx := findColumnIndex(header, []string{"Stock", "Quantity", "Available"})
	imageIdx := findColumnIndex(header, []string{"Image URL", "Image", "ImageURL"})
	expiryIdx := findColumnIndex(header, []string{"Expiration Date", "Expires", "Expiry"})
	activeIdx := findColumnIndex(header, []string{"Active", "Is Active", "Status"})

	if nameIdx == -1 || categoryIdx == -1 || pointsIdx == -1 || stockIdx == -1 {
		return nil, nil, errors.New("required columns not found: name, category, points and stock are mandatory")
	}

	result := &ImportResult{}
	var rewards []*models.Reward
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}

		reward, err := parseRow(row, line, rowColumns{
			name: nameIdx, desc: descIdx, category: categoryIdx, points: pointsIdx,
			stock: stockIdx, image: imageIdx, expiry: expiryIdx, active: activeIdx,
		})
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, err.Error())
			continue
		}
		rewards = append(rewards, reward)
	}
	return rewards, result, nil
}

// ImportRewards parses r and stores every valid reward through creator.
// Rewards whose name is already in the catalog are skipped.
func ImportRewards(ctx context.Context, r io.Reader, creator RewardCreator, catalog repositories.RewardRepository) (*ImportResult, error) {
	rewards, result, err := ParseRewards(r)
	if err != nil {
		return nil, err
	}
	for _, reward := range rewards {
		if _, err := catalog.FindByName(ctx, reward.Name); err == nil {
			result.Skipped++
			continue
		} else if !errors.Is(err, repositories.ErrNotFound) {
			return result, fmt.Errorf("failed to look up reward %q: %w", reward.Name, err)
		}
		if _, err := creator.CreateReward(ctx, reward); err != nil {
			if errors.Is(err, services.ErrInvalidReward) {
				result.Skipped++
				result.Errors = append(result.Errors, fmt.Sprintf("reward %q: %v", reward.Name, err))
				continue
			}
			return result, fmt.Errorf("failed to import reward %q: %w", reward.Name, err)
		}
		result.Imported++
	}
	return result, nil
}

type rowColumns struct {
	name, desc, category, points, stock, image, expiry, active int
}

func parseRow(row []string, line int, cols rowColumns) (*models.Reward, error) {
	field := func(idx int) string {
		if idx < 0 || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	points, err := strconv.ParseInt(field(cols.points), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("line %d: invalid points %q", line, field(cols.points))
	}
	stock, err := strconv.Atoi(field(cols.stock))
	if err != nil {
		return nil, fmt.Errorf("line %d: invalid stock %q", line, field(cols.stock))
	}

	reward := &models.Reward{
		Name:           field(cols.name),
		Description:    field(cols.desc),
		Category:       strings.ToLower(field(cols.category)),
		PointsRequired: points,
		Stock:          stock,
		ImageURL:       field(cols.image),
		IsActive:       true,
	}
	if v := field(cols.active); v != "" {
		reward.IsActive = parseActive(v)
	}
	if v := field(cols.expiry); v != "" {
		expiry, err := parseDate(v)
		if err != nil {
			return nil, fmt.Errorf("line %d: %v", line, err)
		}
		reward.ExpirationDate = &expiry
	}
	return reward, nil
}

// findColumnIndex finds the index of a column by possible names
func findColumnIndex(header []string, possibleNames []string) int {
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		for _, name := range possibleNames {
			if strings.ToLower(name) == h {
				return i
			}
		}
	}
	return -1
}

func parseActive(v string) bool {
	switch strings.ToLower(v) {
	case "false", "no", "n", "0", "inactive":
		return false
	default:
		return true
	}
}

// parseDate accepts the date layouts seen in catalog exports
func parseDate(dateStr string) (time.Time, error) {
	layouts := []string{
		time.RFC3339,
		"2006-01-02",
		"02/01/2006",
		"2006/01/02",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, dateStr); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported date format %q", dateStr)
}
