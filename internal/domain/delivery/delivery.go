package delivery

// Coordinates — широта/долгота в градусах.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type CityRef struct {
	Code   int    `json:"code"`
	Name   string `json:"name"`
	Region string `json:"region,omitempty"`
}

type PointKind string

const (
	PointOffice PointKind = "office"
	PointLocker PointKind = "locker"
)

// PickupPoint — ПВЗ перевозчика. DistanceKm заполняется один раз при
// ранжировании и дальше не пересчитывается.
type PickupPoint struct {
	Code        string      `json:"code"`
	Address     string      `json:"address"`
	Coordinates Coordinates `json:"coordinates"`
	WorkHours   string      `json:"work_time,omitempty"`
	Kind        PointKind   `json:"kind"`
	DistanceKm  float64     `json:"distance"`
}

type Dimensions struct {
	LengthCm int `json:"length"`
	WidthCm  int `json:"width"`
	HeightCm int `json:"height"`
}

// CartParcel — посылка, собранная из корзины: суммарный вес и объявленная
// ценность, габариты фиксированной упаковки.
type CartParcel struct {
	WeightGrams   int        `json:"weight_grams"`
	DeclaredValue int64      `json:"declared_value"`
	Dimensions    Dimensions `json:"dimensions"`
}

type TariffQuote struct {
	TariffCode    int   `json:"tariff_code"`
	Cost          int64 `json:"cost"`
	EstimatedDays int   `json:"estimated_days"`
}

// Тарифы перевозчика: обычная и экономичная посылка, до склада и до постамата.
const (
	TariffParcelOffice  = 136
	TariffParcelLocker  = 368
	TariffEconomyOffice = 234
	TariffEconomyLocker = 366
)

// TariffSweep — фиксированный порядок перебора тарифов при оценке доставки.
var TariffSweep = []int{TariffParcelOffice, TariffParcelLocker, TariffEconomyOffice, TariffEconomyLocker}
