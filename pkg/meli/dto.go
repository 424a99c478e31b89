package meli

// ==================== 趋势 ====================

// Trend 市场热搜词
type Trend struct {
	Keyword  string  `json:"keyword"`
	URL      string  `json:"url"`
	Price    float64 `json:"price,omitempty"`
	Position int     `json:"position"`
}

// ==================== 刊登 ====================

// ItemRequest 刊登创建请求体，字段与 ML items 接口对齐
type ItemRequest struct {
	Title             string          `json:"title"`
	CategoryID        string          `json:"category_id"`
	Price             float64         `json:"price"`
	CurrencyID        string          `json:"currency_id"`
	AvailableQuantity int             `json:"available_quantity"`
	BuyingMode        string          `json:"buying_mode"`
	Condition         string          `json:"condition"`
	ListingTypeID     string          `json:"listing_type_id"`
	Description       ItemDescription `json:"description"`
	Pictures          []Picture       `json:"pictures"`
	Shipping          Shipping        `json:"shipping"`
}

type ItemDescription struct {
	PlainText string `json:"plain_text"`
}

type Picture struct {
	Source string `json:"source"`
}

type Shipping struct {
	Mode         string `json:"mode"`
	LocalPickUp  bool   `json:"local_pick_up"`
	FreeShipping bool   `json:"free_shipping"`
	LogisticType string `json:"logistic_type"`
}

// Item 刊登结果 / 详情
type Item struct {
	ID                string  `json:"id"`
	Title             string  `json:"title"`
	Price             float64 `json:"price"`
	AvailableQuantity int     `json:"available_quantity"`
	Status            string  `json:"status"`
	Permalink         string  `json:"permalink"`
}

// ==================== 订单 ====================

// OrderResponse 市场侧订单
type OrderResponse struct {
	ID          int64            `json:"id"`
	Status      string           `json:"status"`
	DateCreated string           `json:"date_created"`
	TotalAmount float64          `json:"total_amount"`
	PaidAmount  float64          `json:"paid_amount"`
	Buyer       OrderBuyer       `json:"buyer"`
	OrderItems  []OrderItemEntry `json:"order_items"`
	Shipping    OrderShipping    `json:"shipping"`
}

type OrderBuyer struct {
	ID        int64  `json:"id"`
	Nickname  string `json:"nickname"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type OrderItemEntry struct {
	Item struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	} `json:"item"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

type OrderShipping struct {
	ID   int64   `json:"id"`
	Cost float64 `json:"cost"`
}

// OrderSearchResponse 订单搜索结果
type OrderSearchResponse struct {
	Results []OrderResponse `json:"results"`
	Paging  struct {
		Total  int `json:"total"`
		Offset int `json:"offset"`
		Limit  int `json:"limit"`
	} `json:"paging"`
}

// Shipment 发货单
type Shipment struct {
	ID              int64  `json:"id"`
	Status          string `json:"status"`
	TrackingNumber  string `json:"tracking_number"`
	TrackingMethod  string `json:"tracking_method"`
	ReceiverAddress struct {
		StreetName   string `json:"street_name"`
		StreetNumber string `json:"street_number"`
		Comment      string `json:"comment"`
		Neighborhood struct {
			Name string `json:"name"`
		} `json:"neighborhood"`
		City struct {
			Name string `json:"name"`
		} `json:"city"`
		State struct {
			ID string `json:"id"`
		} `json:"state"`
		ZipCode string `json:"zip_code"`
	} `json:"receiver_address"`
}
