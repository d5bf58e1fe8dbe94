package domain

// LetterRequest carries everything the drafting service needs.
type LetterRequest struct {
	RepName     string  `json:"repName"`
	UserCity    string  `json:"userCity"`
	Country     Country `json:"country"`
	Topic       string  `json:"topic"`
	Tone        string  `json:"tone"`
	UserName    string  `json:"userName"`
	UserAddress string  `json:"userAddress"`
	UserPhone   string  `json:"userPhone"`
}

// Letter is the drafted email.
type Letter struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}
