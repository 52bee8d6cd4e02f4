package dto

type TemplateRequest struct {
	Title       string `json:"title" binding:"required,max=150"`
	Description string `json:"description"`
	SectorID    int    `json:"sector_id" binding:"required"`
}

type ItemRequest struct {
	Question string `json:"question" binding:"required,max=500"`
}
