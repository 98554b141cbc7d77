package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go-optics-pos/internal/models"
	"go-optics-pos/internal/utils"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ClientInput struct {
	Name      string `json:"name" binding:"max=200"`
	Phone     string `json:"phone" binding:"max=50"`
	Email     string `json:"email" binding:"omitempty,email"`
	Address   string `json:"address"`
	BirthDate string `json:"birth_date" binding:"omitempty,datetime=2006-01-02"`
	Notes     string `json:"notes"`
	Version   int    `json:"version"`
}

type ClientSuggestions struct {
	Clients []models.Client `json:"clients"`
	Match   *models.Client  `json:"match,omitempty"`
}

type ClientStats struct {
	Count        int64           `json:"count"`
	TotalOrders  int64           `json:"total_orders"`
	TotalSpent   decimal.Decimal `json:"total_spent"`
	AverageSpent decimal.Decimal `json:"average_spent"`
}

type ClientService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewClientService(db *gorm.DB) *ClientService {
	return &ClientService{db: db, now: time.Now}
}

func (s *ClientService) List(ctx context.Context, q string) ([]models.Client, error) {
	query := s.db.WithContext(ctx)
	if q = models.FoldKey(q); q != "" {
		query = query.Where("search_key LIKE ?", "%"+q+"%")
	}
	var clients []models.Client
	if err := query.Order("created_at DESC").Find(&clients).Error; err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	return clients, nil
}

func (s *ClientService) Get(ctx context.Context, id string) (*models.Client, error) {
	var c models.Client
	if err := s.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "client", id)
	}
	return &c, nil
}

func (s *ClientService) Create(ctx context.Context, in ClientInput) (*models.Client, error) {
	if err := checkIdentity(in.Name, in.Phone); err != nil {
		return nil, err
	}
	c := models.Client{
		ID:               utils.NewID(),
		Name:             strings.TrimSpace(in.Name),
		Phone:            strings.TrimSpace(in.Phone),
		Email:            strings.TrimSpace(in.Email),
		Address:          in.Address,
		BirthDate:        in.BirthDate,
		RegistrationDate: s.now().Format(models.DateLayout),
		TotalSpent:       decimal.Zero,
		Notes:            in.Notes,
		Version:          1,
	}
	if err := s.db.WithContext(ctx).Create(&c).Error; err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	return &c, nil
}

// Update edits the contact fields. Order counters are owned by order saves.
func (s *ClientService) Update(ctx context.Context, id string, in ClientInput) (*models.Client, error) {
	if err := checkIdentity(in.Name, in.Phone); err != nil {
		return nil, err
	}
	fields := models.ClientKeys(in.Name, in.Phone, in.Email)
	fields["name"] = strings.TrimSpace(in.Name)
	fields["phone"] = strings.TrimSpace(in.Phone)
	fields["email"] = strings.TrimSpace(in.Email)
	fields["address"] = in.Address
	fields["birth_date"] = in.BirthDate
	fields["notes"] = in.Notes
	err := casUpdate(s.db.WithContext(ctx), &models.Client{}, id, in.Version, fields)
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *ClientService) Delete(ctx context.Context, id string, confirm bool) error {
	if !confirm {
		return ErrConfirmationRequired
	}
	return deleteByID(s.db.WithContext(ctx), &models.Client{}, "client", id)
}

// Suggest returns up to five clients whose name or phone contains the typed text,
// plus the client matching it exactly so the form can fill in the other field.
func (s *ClientService) Suggest(ctx context.Context, name, phone string) (*ClientSuggestions, error) {
	name, phone = strings.TrimSpace(name), strings.TrimSpace(phone)
	out := &ClientSuggestions{Clients: []models.Client{}}
	if name == "" && phone == "" {
		return out, nil
	}

	db := s.db.WithContext(ctx)
	query := db.Model(&models.Client{})
	switch key := models.FoldKey(name); {
	case name != "" && phone != "":
		query = query.Where("name_key LIKE ? OR phone LIKE ?", "%"+key+"%", "%"+phone+"%")
	case name != "":
		query = query.Where("name_key LIKE ?", "%"+key+"%")
	default:
		query = query.Where("phone LIKE ?", "%"+phone+"%")
	}
	if err := query.Order("last_visit DESC").Limit(5).Find(&out.Clients).Error; err != nil {
		return nil, fmt.Errorf("suggest clients: %w", err)
	}

	for i := range out.Clients {
		c := &out.Clients[i]
		if (phone != "" && c.Phone == phone) || (name != "" && strings.EqualFold(c.Name, name)) {
			out.Match = c
			break
		}
	}
	return out, nil
}

func (s *ClientService) Stats(ctx context.Context) (*ClientStats, error) {
	var clients []models.Client
	if err := s.db.WithContext(ctx).Select("total_orders", "total_spent").Find(&clients).Error; err != nil {
		return nil, fmt.Errorf("client stats: %w", err)
	}

	stats := &ClientStats{Count: int64(len(clients)), TotalSpent: decimal.Zero, AverageSpent: decimal.Zero}
	for _, c := range clients {
		stats.TotalOrders += int64(c.TotalOrders)
		stats.TotalSpent = stats.TotalSpent.Add(c.TotalSpent)
	}
	if stats.Count > 0 {
		stats.AverageSpent = utils.Round2(stats.TotalSpent.Div(decimal.NewFromInt(stats.Count)))
	}
	return stats, nil
}
