package types

// TripPreferences is the traveller's request for a generated route.
// Destinations is an ordered list such as "乌鲁木齐,吐鲁番,喀什"; the legacy
// StartLocation/EndLocation fields are used when it is empty.
type TripPreferences struct {
	Destinations  string `json:"destinations,omitempty"`
	TravelDates   string `json:"travelDates,omitempty"`
	Duration      int    `json:"duration"`
	ArrivalTime   string `json:"arrivalTime,omitempty"`
	DepartureTime string `json:"departureTime,omitempty"`

	PeopleCount       int    `json:"peopleCount,omitempty"`
	AgeGroups         string `json:"ageGroups,omitempty"`
	HasMobilityIssues *bool  `json:"hasMobilityIssues,omitempty"`
	SpecialDietary    string `json:"specialDietary,omitempty"`

	StylePreferences []string `json:"stylePreferences,omitempty"`

	TotalBudget    *float64 `json:"totalBudget,omitempty"`
	DailyBudget    *float64 `json:"dailyBudget,omitempty"`
	IncludesFlight *bool    `json:"includesFlight,omitempty"`

	AccommodationPreferences  []string `json:"accommodationPreferences,omitempty"`
	TransportationPreferences []string `json:"transportationPreferences,omitempty"`

	MustVisit          []string `json:"mustVisit,omitempty"`
	MustAvoid          []string `json:"mustAvoid,omitempty"`
	WeatherSensitivity string   `json:"weatherSensitivity,omitempty"`
	OutputFormats      []string `json:"outputFormats,omitempty"`

	NeedRestaurantSuggestions *bool `json:"needRestaurantSuggestions,omitempty"`
	NeedTicketSuggestions     *bool `json:"needTicketSuggestions,omitempty"`
	NeedTransportSuggestions  *bool `json:"needTransportSuggestions,omitempty"`
	NeedPackingList           *bool `json:"needPackingList,omitempty"`
	NeedSafetyTips            *bool `json:"needSafetyTips,omitempty"`
	NeedVisaInfo              *bool `json:"needVisaInfo,omitempty"`

	// Legacy fields still sent by older clients.
	StartLocation      string   `json:"startLocation,omitempty"`
	EndLocation        string   `json:"endLocation,omitempty"`
	Interests          []string `json:"interests,omitempty"`
	Budget             *float64 `json:"budget,omitempty"`
	MustVisitLocations []string `json:"mustVisitLocations,omitempty"`
}

// ItineraryPlan is the synthesized route returned to clients.
type ItineraryPlan struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Itinerary   []DayPlan `json:"itinerary"`
	Tips        []string  `json:"tips"`
}

type DayPlan struct {
	Day            int        `json:"day"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Locations      []Location `json:"locations"`
	Accommodation  string     `json:"accommodation,omitempty"`
	Meals          []string   `json:"meals"`
	Transportation string     `json:"transportation,omitempty"`
	TimeSchedule   string     `json:"timeSchedule,omitempty"`
	DailyBudget    string     `json:"dailyBudget,omitempty"`
}

// Location coordinates are nil when the source did not provide them.
type Location struct {
	Name        string   `json:"name"`
	Lat         *float64 `json:"lat"`
	Lng         *float64 `json:"lng"`
	Description string   `json:"description,omitempty"`
}
