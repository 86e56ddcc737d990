// Package paging — постраничный вывод публикаций.
package paging

const (
	// PageSize — публикаций на страницу.
	PageSize = 5
	// MaxPages — глубина истории, старое дальше не листается.
	MaxPages = 10
)

// TotalPages — число страниц для count элементов, не больше MaxPages.
// Пустой список занимает одну страницу.
func TotalPages(count int) int {
	if count <= 0 {
		return 1
	}
	pages := (count + PageSize - 1) / PageSize
	if pages > MaxPages {
		return MaxPages
	}
	return pages
}

// Clamp приводит запрошенную страницу в диапазон [1, totalPages].
func Clamp(page, totalPages int) int {
	if page < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}

// Offset — смещение для SQL-запроса страницы page (с единицы).
func Offset(page int) int {
	return (page - 1) * PageSize
}
