package dto

import (
	"time"

	"standbill_backend/internals/features/finance/sequences/model"
)

type ConfigureSequenceRequest struct {
	NumberSequenceStartFrom int64 `json:"number_sequence_start_from" validate:"required,min=1"`
}

type SequenceResponse struct {
	NumberSequenceName         string    `json:"number_sequence_name"`
	NumberSequenceCurrentValue int64     `json:"number_sequence_current_value"`
	NumberSequenceStartFrom    int64     `json:"number_sequence_start_from"`
	NumberSequenceNextValue    int64     `json:"number_sequence_next_value"`
	NumberSequenceUpdatedAt    time.Time `json:"number_sequence_updated_at"`
}

func FromModel(m model.NumberSequenceModel) SequenceResponse {
	return SequenceResponse{
		NumberSequenceName:         m.NumberSequenceName,
		NumberSequenceCurrentValue: m.NumberSequenceCurrentValue,
		NumberSequenceStartFrom:    m.NumberSequenceStartFrom,
		NumberSequenceNextValue:    m.Next(),
		NumberSequenceUpdatedAt:    m.NumberSequenceUpdatedAt,
	}
}

func FromModels(rows []model.NumberSequenceModel) []SequenceResponse {
	out := make([]SequenceResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, FromModel(r))
	}
	return out
}
