package repositories

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/la-cortesia/cortesia_api/model"
)

// SnapshotRepository persists game snapshots keyed by game id.
type SnapshotRepository struct {
	BaseRepository
}

func NewSnapshotRepository(db *gorm.DB) *SnapshotRepository {
	return &SnapshotRepository{BaseRepository: NewBaseRepository(db)}
}

// Save upserts the snapshot for its game id.
func (r *SnapshotRepository) Save(snapshot *model.GameSnapshot) error {
	return r.DB().Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(snapshot).Error
}

func (r *SnapshotRepository) GetByID(gameID string) (*model.GameSnapshot, error) {
	var snapshot model.GameSnapshot
	if err := r.DB().First(&snapshot, "id = ?", gameID).Error; err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func (r *SnapshotRepository) Delete(gameID string) error {
	return r.DB().Delete(&model.GameSnapshot{}, "id = ?", gameID).Error
}
