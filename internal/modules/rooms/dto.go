package rooms

type CreateRoomRequest struct {
	Name             string `json:"name" binding:"required"`
	Description      string `json:"description"`
	PricePerNight    int64  `json:"price_per_night" binding:"required"`
	CapacityAdults   int    `json:"capacity_adults" binding:"required"`
	CapacityChildren int    `json:"capacity_children"`
}

type UpdateRoomRequest struct {
	Name             *string `json:"name"`
	Description      *string `json:"description"`
	PricePerNight    *int64  `json:"price_per_night"`
	CapacityAdults   *int    `json:"capacity_adults"`
	CapacityChildren *int    `json:"capacity_children"`
	Active           *bool   `json:"active"`
}

type AvailabilityResponse struct {
	RoomID    int64  `json:"room_id"`
	CheckIn   string `json:"check_in"`
	CheckOut  string `json:"check_out"`
	Available bool   `json:"available"`
}
