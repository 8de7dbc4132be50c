package repositories

// ProductMasterSource provides (product_number, process_number,
// seconds_per_unit) rows (spec.md §3, §6).
type ProductMasterSource interface {
	ProductProcessTimes(productNumber string) (map[string]float64, error)
}
