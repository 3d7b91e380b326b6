package dashboard

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/ettle/strcase"
)

var monthNames = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

// DecodeDataset reads a JSON array of entities and normalizes it.
func DecodeDataset(r io.Reader) ([]Entity, error) {
	var entities []Entity
	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&entities); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("dashboard: dataset is empty")
		}
		return nil, fmt.Errorf("dashboard: parse dataset: %w", err)
	}
	return NormalizeEntities(entities)
}

// NormalizeEntities fills derived identifiers, orders records and rejects
// duplicate identifiers or periods. The input slice is not modified.
func NormalizeEntities(entities []Entity) ([]Entity, error) {
	out := make([]Entity, 0, len(entities))
	seen := make(map[string]struct{}, len(entities))
	for idx, entity := range entities {
		entity = cloneEntity(entity)
		entity.Name = strings.TrimSpace(entity.Name)
		entity.ID = strings.TrimSpace(entity.ID)
		if entity.ID == "" {
			entity.ID = strcase.ToKebab(entity.Name)
		}
		if entity.ID == "" {
			return nil, fmt.Errorf("dashboard: entity at index %d has neither id nor name", idx)
		}
		if entity.Name == "" {
			entity.Name = strcase.ToCase(entity.ID, strcase.TitleCase, ' ')
		}
		if _, dup := seen[entity.ID]; dup {
			return nil, fmt.Errorf("dashboard: duplicate entity id %q", entity.ID)
		}
		seen[entity.ID] = struct{}{}
		if entity.Coord != nil {
			c := entity.Coord.normalized()
			entity.Coord = &c
		}
		var err error
		if entity.Records, err = orderRecords(entity.Records); err != nil {
			return nil, fmt.Errorf("dashboard: entity %s records: %w", entity.ID, err)
		}
		if entity.Monthly, err = orderRecords(entity.Monthly); err != nil {
			return nil, fmt.Errorf("dashboard: entity %s monthly records: %w", entity.ID, err)
		}
		out = append(out, entity)
	}
	return out, nil
}

func orderRecords(records []Record) ([]Record, error) {
	if len(records) == 0 {
		return records, nil
	}
	seen := make(map[string]struct{}, len(records))
	keys := make([]int, len(records))
	sortable := true
	for i := range records {
		records[i].Period = strings.TrimSpace(records[i].Period)
		if records[i].Period == "" {
			return nil, fmt.Errorf("record at index %d has no period", i)
		}
		if _, dup := seen[records[i].Period]; dup {
			return nil, fmt.Errorf("duplicate period %q", records[i].Period)
		}
		seen[records[i].Period] = struct{}{}
		if records[i].Values == nil {
			records[i].Values = map[string]float64{}
		}
		key, ok := periodKey(records[i].Period)
		if !ok {
			sortable = false
		}
		keys[i] = key
	}
	if !sortable {
		return records, nil
	}
	idx := make([]int, len(records))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return keys[idx[a]] < keys[idx[b]] })
	ordered := make([]Record, len(records))
	for i, j := range idx {
		ordered[i] = records[j]
	}
	return ordered, nil
}

// periodKey maps "2015", "2025-03" and month names onto a sortable integer.
func periodKey(label string) (int, bool) {
	if year, err := strconv.Atoi(label); err == nil {
		return year * 100, true
	}
	if len(label) == 7 && label[4] == '-' {
		year, errY := strconv.Atoi(label[:4])
		month, errM := strconv.Atoi(label[5:])
		if errY == nil && errM == nil && month >= 1 && month <= 12 {
			return year*100 + month, true
		}
	}
	lower := strings.ToLower(label)
	if len(lower) >= 3 {
		if month, ok := monthNames[lower[:3]]; ok {
			return month, true
		}
	}
	return 0, false
}
