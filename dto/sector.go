package dto

type SectorRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description" binding:"max=255"`
}

type AssignLeadersRequest struct {
	LeaderIDs []int `json:"leader_ids" binding:"required"`
}
