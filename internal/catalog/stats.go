package catalog

// stats.go computes the summary view shown in the statistics dialog:
// pure aggregation over a record slice, no persistence involved.

import "sort"

// FrequencyEntry is one row of a top-N frequency table.
type FrequencyEntry struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Statistics summarizes the full record set.
type Statistics struct {
	Total         int              `json:"total"`
	Active        int              `json:"active"`
	Inactive      int              `json:"inactive"`
	TotalValue    float64          `json:"totalValue"`
	AveragePrice  float64          `json:"averagePrice"`
	MinPrice      float64          `json:"minPrice"`
	MaxPrice      float64          `json:"maxPrice"`
	CategoryCount int              `json:"categoryCount"`
	TopCategories []FrequencyEntry `json:"topCategories"`
	TopBrands     []FrequencyEntry `json:"topBrands"`
}

// topN returned by the per-category and per-brand tables.
const topN = 5

// ComputeStatistics aggregates the given records. An empty slice yields
// zero values throughout.
func ComputeStatistics(products []Product) Statistics {
	s := Statistics{Total: len(products)}
	if len(products) == 0 {
		return s
	}

	byCategory := make(map[string]int)
	byBrand := make(map[string]int)

	s.MinPrice = products[0].Price
	s.MaxPrice = products[0].Price

	for _, p := range products {
		if p.Active {
			s.Active++
		}
		s.TotalValue += p.Price
		if p.Price < s.MinPrice {
			s.MinPrice = p.Price
		}
		if p.Price > s.MaxPrice {
			s.MaxPrice = p.Price
		}

		cat := p.Category
		if cat == "" {
			cat = "Unknown"
		}
		byCategory[cat]++

		brand := p.Brand
		if brand == "" {
			brand = "Unknown"
		}
		byBrand[brand]++
	}

	s.Inactive = s.Total - s.Active
	s.AveragePrice = s.TotalValue / float64(s.Total)
	s.CategoryCount = len(byCategory)
	s.TopCategories = topEntries(byCategory, topN)
	s.TopBrands = topEntries(byBrand, topN)
	return s
}

// topEntries returns the n most frequent entries, count descending with
// name ascending as tiebreak so the output is stable across runs.
func topEntries(counts map[string]int, n int) []FrequencyEntry {
	entries := make([]FrequencyEntry, 0, len(counts))
	for name, count := range counts {
		entries = append(entries, FrequencyEntry{Name: name, Count: count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Name < entries[j].Name
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}
