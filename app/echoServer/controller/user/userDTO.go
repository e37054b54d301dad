package user

type CreateUserReq struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

type UpdateUserReq struct {
	Name  *string `json:"name"`
	Email *string `json:"email" validate:"omitempty,email"`
}
