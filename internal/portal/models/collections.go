package models

// ConsultationStaff is the staff summary embedded in a consultation.
type ConsultationStaff struct {
	ID                int      `json:"id"`
	User              string   `json:"user"`
	Gender            string   `json:"gender"`
	Age               int      `json:"age"`
	ContactOne        string   `json:"contact_one"`
	Nationality       string   `json:"nationality"`
	Specialization    string   `json:"specialization"`
	YearsOfExperience string   `json:"years_of_experience"`
	Languages         []string `json:"languages"`
	Bio               string   `json:"bio"`
}

// FollowUp links a consultation to the one it follows up on.
type FollowUp struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Consultation struct {
	ID        int               `json:"id"`
	Name      string            `json:"name"`
	Purpose   string            `json:"purpose"`
	Staff     ConsultationStaff `json:"staff"`
	Date      string            `json:"date"`
	Time      string            `json:"time"`
	Type      string            `json:"type"`
	FollowUp  *FollowUp         `json:"follow_up"`
	CreatedAt string            `json:"created_at"`
	UpdatedAt string            `json:"updated_at"`
}

type DrugStock struct {
	ID                     int     `json:"id"`
	Name                   string  `json:"name"`
	Quantity               int     `json:"quantity"`
	OrderQuantity          int     `json:"order_quantity"`
	Price                  float64 `json:"price"`
	IsPrescriptionRequired bool    `json:"is_prescription_required"`
}

type Drug struct {
	ID                     int         `json:"id"`
	Name                   string      `json:"name"`
	GenericName            string      `json:"generic_name"`
	Brand                  string      `json:"brand"`
	Description            string      `json:"description"`
	DosageForm             []string    `json:"dosage_form"`
	Route                  []string    `json:"route"`
	PharmClass             []string    `json:"pharm_class"`
	Indications            string      `json:"indications"`
	SideEffects            string      `json:"side_effects"`
	Precautions            string      `json:"precautions"`
	ActiveIngredients      []string    `json:"active_ingredients"`
	Warnings               string      `json:"warnings"`
	Storage                string      `json:"storage"`
	Manufacturer           string      `json:"manufacturer"`
	Stocks                 []DrugStock `json:"stocks"`
	IsPrescriptionRequired bool        `json:"is_prescription_required"`
	ImgURL                 string      `json:"img_url,omitempty"`
}

type OrderItemDrug struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type OrderItem struct {
	ID                int           `json:"id"`
	Drug              OrderItemDrug `json:"drug"`
	Quantity          int           `json:"quantity"`
	Price             float64       `json:"price"`
	TotalPrice        float64       `json:"total_price"`
	PrescriptionImage string        `json:"prescription_image,omitempty"`
}

type Order struct {
	ID         int         `json:"id"`
	Status     string      `json:"status"`
	Address    string      `json:"address"`
	Items      []OrderItem `json:"items"`
	TotalPrice float64     `json:"total_price"`
	Date       string      `json:"date"`
}

type Message struct {
	ID      string `json:"id"`
	Sender  string `json:"sender"`
	Message string `json:"message"`
}

// DietPlanItem is one day of a diet plan; Meals maps a meal type
// (breakfast, lunch, ...) to the foods planned for it.
type DietPlanItem struct {
	Day   int                 `json:"day"`
	Date  string              `json:"date"`
	Meals map[string][]string `json:"meals"`
	Notes string              `json:"notes"`
}

type DietPlan struct {
	ID             int            `json:"id"`
	Goal           string         `json:"goal"`
	DietType       string         `json:"diet_type"`
	DurationDays   int            `json:"duration_days"`
	MealTypes      []string       `json:"meal_types"`
	ActivityLevel  string         `json:"activity_level"`
	PreferredFoods []string       `json:"preferred_foods"`
	EndDate        string         `json:"end_date"`
	Plans          []DietPlanItem `json:"plans"`
}

// ClientCollections is the atomic payload of GET /client/data: all five
// role-specific collections in one response.
type ClientCollections struct {
	Consultations []Consultation `json:"consultations"`
	Drugs         []Drug         `json:"drugs"`
	Orders        []Order        `json:"orders"`
	Messages      []Message      `json:"messages"`
	DietPlans     []DietPlan     `json:"diet_plans"`
}

// ServerTime is the unauthenticated clock payload of GET /server_time,
// used for display and synchronization only.
type ServerTime struct {
	Timestamp   float64 `json:"timestamp"`
	CurrentDate string  `json:"current_date"`
}
