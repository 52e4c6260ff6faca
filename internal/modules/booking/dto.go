package booking

type CreateBookingRequest struct {
	RoomID   int64  `json:"room_id" binding:"required"`
	CheckIn  string `json:"check_in" binding:"required"`
	CheckOut string `json:"check_out" binding:"required"`
	Adults   int    `json:"adults" binding:"required"`
	Children int    `json:"children"`
}

type UpdateBookingRequest struct {
	CheckIn  string `json:"check_in" binding:"required"`
	CheckOut string `json:"check_out" binding:"required"`
	Adults   int    `json:"adults" binding:"required"`
	Children int    `json:"children"`
}

type CancelBookingRequest struct {
	Reason string `json:"reason" binding:"required"`
}
