// file: internals/features/finance/sequences/model/number_sequence_model.go
package model

import "time"

const (
	SequenceReceiptIncome  = "receipt-income"
	SequenceReceiptExpense = "receipt-expense"
)

// DefaultSequences are seeded by migrate.
var DefaultSequences = []NumberSequenceModel{
	{NumberSequenceName: SequenceReceiptIncome, NumberSequenceStartFrom: 1},
	{NumberSequenceName: SequenceReceiptExpense, NumberSequenceStartFrom: 1},
}

// NumberSequenceModel: current_value 0 berarti belum pernah dipakai (mulai dari start_from).
type NumberSequenceModel struct {
	NumberSequenceName         string    `json:"number_sequence_name" gorm:"column:number_sequence_name;type:varchar(60);primaryKey"`
	NumberSequenceCurrentValue int64     `json:"number_sequence_current_value" gorm:"column:number_sequence_current_value;not null;check:chk_number_sequences_current,number_sequence_current_value >= 0"`
	NumberSequenceStartFrom    int64     `json:"number_sequence_start_from" gorm:"column:number_sequence_start_from;not null;check:chk_number_sequences_start,number_sequence_start_from >= 1"`
	NumberSequenceUpdatedAt    time.Time `json:"number_sequence_updated_at" gorm:"column:number_sequence_updated_at;autoUpdateTime"`
}

func (NumberSequenceModel) TableName() string { return "number_sequences" }

// Next is the value the following allocation would return.
func (m NumberSequenceModel) Next() int64 {
	if m.NumberSequenceCurrentValue == 0 {
		return m.NumberSequenceStartFrom
	}
	return m.NumberSequenceCurrentValue + 1
}
