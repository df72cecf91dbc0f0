package carrier

// Узкие проекции ответов перевозчика: только поля, нужные ядру.
// Опциональные поля — указатели, отсутствие обрабатывается при маппинге.

type cityDTO struct {
	Code   int    `json:"code"`
	City   string `json:"city"`
	Region string `json:"region"`
}

type pointDTO struct {
	Code     string `json:"code"`
	Type     string `json:"type"`
	WorkTime string `json:"work_time"`
	Location struct {
		Address   string  `json:"address"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"location"`
}

type tariffRequest struct {
	TariffCode    int             `json:"tariff_code"`
	DeclaredValue int64           `json:"declared_value,omitempty"`
	FromLocation  cityLocation    `json:"from_location"`
	ToLocation    tariffLocation  `json:"to_location"`
	Packages      []tariffPackage `json:"packages"`
}

type cityLocation struct {
	Code int `json:"code"`
}

type tariffLocation struct {
	Code          int    `json:"code"`
	DeliveryPoint string `json:"delivery_point,omitempty"`
}

type tariffPackage struct {
	Weight int `json:"weight"`
	Length int `json:"length"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

type tariffDTO struct {
	TotalSum  *float64 `json:"total_sum"`
	PeriodMin *int     `json:"period_min"`
}
