package response

import "github.com/technest/technest-api/internal/domain"

type LoginResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

type InterestResponse struct {
	Message  string          `json:"message"`
	Interest domain.Interest `json:"interest"`
	Event    EventTitle      `json:"event"`
}

type EventTitle struct {
	Title string `json:"title"`
}

type CategoriesResponse struct {
	Categories []domain.Category `json:"categories"`
	Count      int               `json:"count"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
