package directory

import (
	"context"

	"github.com/Rup-source226/maa-care-ai/internal/records"
)

// DoctorSource is the slice of the record store the directory reads from.
type DoctorSource interface {
	ListDoctors(ctx context.Context, f records.DoctorFilter) ([]records.Doctor, error)
	GetDoctor(ctx context.Context, id int64) (*records.Doctor, error)
	ListSpecialties(ctx context.Context) ([]string, error)
	ListLocations(ctx context.Context) ([]string, error)
}

// Listing is one directory page: the doctors matching the filter plus the
// facet values for the filter dropdowns. Facets always come from the full
// unfiltered set so narrowing one facet never hides the others' options.
type Listing struct {
	Doctors     []records.Doctor `json:"doctors"`
	Specialties []string         `json:"specialties"`
	Locations   []string         `json:"locations"`
}

// Service answers read-only doctor discovery queries.
type Service struct {
	source DoctorSource
}

func NewService(source DoctorSource) *Service {
	return &Service{source: source}
}

// Browse runs the filter and assembles the facets. An empty filter returns
// every doctor.
func (s *Service) Browse(ctx context.Context, f records.DoctorFilter) (*Listing, error) {
	doctors, err := s.source.ListDoctors(ctx, f)
	if err != nil {
		return nil, err
	}
	specialties, err := s.source.ListSpecialties(ctx)
	if err != nil {
		return nil, err
	}
	locations, err := s.source.ListLocations(ctx)
	if err != nil {
		return nil, err
	}
	if doctors == nil {
		doctors = []records.Doctor{}
	}
	return &Listing{Doctors: doctors, Specialties: specialties, Locations: locations}, nil
}

// Profile returns one doctor, nil when the id is unknown.
func (s *Service) Profile(ctx context.Context, id int64) (*records.Doctor, error) {
	return s.source.GetDoctor(ctx, id)
}
