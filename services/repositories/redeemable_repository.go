package repositories

import (
	"time"

	"gorm.io/gorm"

	"github.com/la-cortesia/cortesia_api/model"
)

// RedeemableRepository persists zero-sum redeemable cards issued as
// challenge rewards.
type RedeemableRepository struct {
	BaseRepository
}

func NewRedeemableRepository(db *gorm.DB) *RedeemableRepository {
	return &RedeemableRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *RedeemableRepository) Save(card *model.RedeemableCard) error {
	return r.DB().Save(card).Error
}

func (r *RedeemableRepository) GetByID(id string) (*model.RedeemableCard, error) {
	var card model.RedeemableCard
	if err := r.DB().First(&card, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &card, nil
}

// MarkRedeemed flips an active card to redeemed. Expired and already
// redeemed cards are left untouched; the caller checks RowsAffected.
func (r *RedeemableRepository) MarkRedeemed(id string) (int64, error) {
	result := r.DB().Model(&model.RedeemableCard{}).
		Where("id = ? AND status = ? AND expires_at > ?", id, model.RedeemableStatusActive, time.Now()).
		Update("status", model.RedeemableStatusRedeemed)
	return result.RowsAffected, result.Error
}

// ExpireOutstanding marks active cards past their expiry.
func (r *RedeemableRepository) ExpireOutstanding() (int64, error) {
	result := r.DB().Model(&model.RedeemableCard{}).
		Where("status = ? AND expires_at <= ?", model.RedeemableStatusActive, time.Now()).
		Update("status", model.RedeemableStatusExpired)
	return result.RowsAffected, result.Error
}

func (r *RedeemableRepository) ListByStatus(status string) ([]model.RedeemableCard, error) {
	var cards []model.RedeemableCard
	err := r.DB().Where("status = ?", status).Order("created_at DESC").Find(&cards).Error
	return cards, err
}
