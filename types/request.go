package types

type CreateStartupRequest struct {
	Name        string  `json:"name" binding:"required"`
	Website     *string `json:"website"`
	Description *string `json:"description"`
}
