package domain

// Broadcast is a Tableau broadcast resource: a pushed view of a workbook.
// Only the identifiers needed to locate and update one are modelled here;
// the rest of the entity belongs to the platform.
type Broadcast struct {
	ID         string `json:"id"`
	WorkbookID string `json:"workbook_id"`
}
