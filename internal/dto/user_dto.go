package dto

type UpdateProfileRequest struct {
	Name           string `json:"name" validate:"omitempty,min=2"`
	Specialization string `json:"specialization"`
	HospitalName   string `json:"hospital_name"`
}
