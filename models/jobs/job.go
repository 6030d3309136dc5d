package jobs

import (
	"time"

	"github.com/lib/pq"
)

// Job is a posting in the catalog. Applicants holds user ids in the order they applied.
type Job struct {
	ID                 string         `json:"id" gorm:"primaryKey;type:uuid"`
	Title              string         `json:"title" gorm:"not null"`
	CompanyName        string         `json:"companyName"`
	CompanyLogo        string         `json:"companyLogo" gorm:"type:text"`
	CompanyDescription string         `json:"companyDescription" gorm:"type:text"`
	Location           string         `json:"location"`
	EmploymentType     string         `json:"employmentType"`
	Skills             pq.StringArray `json:"skills" gorm:"type:text[]"`
	Benefits           pq.StringArray `json:"benefits" gorm:"type:text[]"`
	Description        string         `json:"description" gorm:"type:text"`
	SalaryMin          *int           `json:"salaryMin,omitempty"`
	SalaryMax          *int           `json:"salaryMax,omitempty"`
	Experience         string         `json:"experience"`
	ContactEmail       string         `json:"contactEmail"`
	Category           string         `json:"category" gorm:"index"`
	Deadline           *time.Time     `json:"deadline,omitempty"`
	CreatorID          string         `json:"creatorId" gorm:"index;not null"`
	Applicants         pq.StringArray `json:"applicants" gorm:"type:text[];not null;default:'{}'"`
	CreatedAt          time.Time      `json:"createdAt"`
	UpdatedAt          time.Time      `json:"updatedAt"`
}

// HasApplicant reports whether userID is already in the applicants list.
func (j *Job) HasApplicant(userID string) bool {
	for _, id := range j.Applicants {
		if id == userID {
			return true
		}
	}
	return false
}

// Patch carries the client-supplied job fields. Nil fields are not touched.
type Patch struct {
	Title              *string    `json:"title"`
	CompanyName        *string    `json:"companyName"`
	CompanyLogo        *string    `json:"companyLogo"`
	CompanyDescription *string    `json:"companyDescription"`
	Location           *string    `json:"location"`
	EmploymentType     *string    `json:"employmentType"`
	Skills             *[]string  `json:"skills"`
	Benefits           *[]string  `json:"benefits"`
	Description        *string    `json:"description"`
	SalaryMin          *int       `json:"salaryMin"`
	SalaryMax          *int       `json:"salaryMax"`
	Experience         *string    `json:"experience"`
	ContactEmail       *string    `json:"contactEmail"`
	Category           *string    `json:"category"`
	Deadline           *time.Time `json:"deadline"`
	Applicants         *[]string  `json:"applicants"`
}

// Apply overwrites the fields of j that are present in p.
func (p Patch) Apply(j *Job) {
	if p.Title != nil {
		j.Title = *p.Title
	}
	if p.CompanyName != nil {
		j.CompanyName = *p.CompanyName
	}
	if p.CompanyLogo != nil {
		j.CompanyLogo = *p.CompanyLogo
	}
	if p.CompanyDescription != nil {
		j.CompanyDescription = *p.CompanyDescription
	}
	if p.Location != nil {
		j.Location = *p.Location
	}
	if p.EmploymentType != nil {
		j.EmploymentType = *p.EmploymentType
	}
	if p.Skills != nil {
		j.Skills = pq.StringArray(*p.Skills)
	}
	if p.Benefits != nil {
		j.Benefits = pq.StringArray(*p.Benefits)
	}
	if p.Description != nil {
		j.Description = *p.Description
	}
	if p.SalaryMin != nil {
		v := *p.SalaryMin
		j.SalaryMin = &v
	}
	if p.SalaryMax != nil {
		v := *p.SalaryMax
		j.SalaryMax = &v
	}
	if p.Experience != nil {
		j.Experience = *p.Experience
	}
	if p.ContactEmail != nil {
		j.ContactEmail = *p.ContactEmail
	}
	if p.Category != nil {
		j.Category = *p.Category
	}
	if p.Deadline != nil {
		v := *p.Deadline
		j.Deadline = &v
	}
	if p.Applicants != nil {
		j.Applicants = pq.StringArray(*p.Applicants)
	}
}
