// Package model defines core domain types shared across the service.
package model

import (
	"fmt"
	"math"
)

type Region string

const (
	England         Region = "England"
	Scotland        Region = "Scotland"
	Wales           Region = "Wales"
	NorthernIreland Region = "Northern Ireland"
)

var Regions = []Region{England, Scotland, Wales, NorthernIreland}

type Status string

const (
	StatusAnnounced    Status = "Announced"
	StatusPlanning     Status = "Planning"
	StatusConstruction Status = "Construction"
	StatusOperational  Status = "Operational"
	StatusCancelled    Status = "Cancelled"
	StatusDelayed      Status = "Delayed"
)

type Coordinates struct {
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
}

// Finite reports whether both components are real numbers.
func (c Coordinates) Finite() bool {
	return !math.IsNaN(c.Latitude) && !math.IsInf(c.Latitude, 0) &&
		!math.IsNaN(c.Longitude) && !math.IsInf(c.Longitude, 0)
}

type Location struct {
	City        string      `json:"city" validate:"required"`
	Region      Region      `json:"region" validate:"required,oneof='England' 'Scotland' 'Wales' 'Northern Ireland'"`
	Postcode    string      `json:"postcode"`
	Coordinates Coordinates `json:"coordinates"`
}

type Investment struct {
	Amount        float64 `json:"amount" validate:"gte=0"`
	Currency      string  `json:"currency" validate:"required,eq=GBP"`
	DisplayAmount string  `json:"displayAmount"`
}

type Industry struct {
	Category    string `json:"category" validate:"required,oneof='Semiconductor' 'Automotive' 'Battery' 'Renewable Energy' 'Metals' 'Aerospace' 'Pharmaceuticals' 'Food & Beverage' 'Textiles' 'Other'"`
	Subcategory string `json:"subcategory,omitempty"`
}

type Timeline struct {
	AnnouncementDate       string `json:"announcementDate" validate:"required"`
	StartDate              string `json:"startDate"`
	ExpectedCompletionDate string `json:"expectedCompletionDate"`
	ActualCompletionDate   string `json:"actualCompletionDate,omitempty"`
}

type Employment struct {
	JobsCreated  int      `json:"jobsCreated" validate:"gte=0"`
	JobsRetained int      `json:"jobsRetained,omitempty" validate:"gte=0"`
	JobTypes     []string `json:"jobTypes"`
}

type Source struct {
	URL   string `json:"url" validate:"omitempty,url"`
	Title string `json:"title"`
	Date  string `json:"date"`
	Type  string `json:"type" validate:"omitempty,oneof='Government' 'Company' 'Industry Report' 'News'"`
}

type GovernmentSupport struct {
	Amount      float64 `json:"amount,omitempty" validate:"gte=0"`
	Type        string  `json:"type" validate:"oneof='Grant' 'Loan' 'Tax Relief' 'Other'"`
	Description string  `json:"description"`
}

// Project is one manufacturing investment record of the bundled dataset.
type Project struct {
	ID                string             `json:"id" validate:"required"`
	CompanyName       string             `json:"companyName" validate:"required"`
	ProjectName       string             `json:"projectName" validate:"required"`
	Location          Location           `json:"location"`
	Investment        Investment         `json:"investment"`
	Industry          Industry           `json:"industry"`
	Timeline          Timeline           `json:"timeline"`
	Employment        Employment         `json:"employment"`
	Status            Status             `json:"status" validate:"required,oneof=Announced Planning Construction Operational Cancelled Delayed"`
	Sources           []Source           `json:"sources" validate:"dive"`
	GovernmentSupport *GovernmentSupport `json:"governmentSupport,omitempty"`
	Description       string             `json:"description"`
	Images            []string           `json:"images,omitempty"`
}

type BBox struct {
	X1, Y1 float64
	X2, Y2 float64
	SRID   string
}

// String representation matching wfs/wms bbox format
func (b BBox) String() string {
	return fmt.Sprintf("%.6f,%.6f,%.6f,%.6f,%s", b.X1, b.Y1, b.X2, b.Y2, b.SRID)
}

func (b BBox) Contains(c Coordinates) bool {
	return c.Longitude >= b.X1 && c.Longitude <= b.X2 &&
		c.Latitude >= b.Y1 && c.Latitude <= b.Y2
}

type Cells []string

type Bounds struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}

func (b Bounds) Contains(c Coordinates) bool {
	return c.Latitude >= b.South && c.Latitude <= b.North &&
		c.Longitude >= b.West && c.Longitude <= b.East
}

type Viewport struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Zoom      float64 `json:"zoom"`
	Bearing   float64 `json:"bearing"`
	Pitch     float64 `json:"pitch"`
}

var UKBounds = Bounds{
	North: 60.8566,
	South: 49.8597,
	East:  1.7681,
	West:  -8.6500,
}

var UKDefaultViewport = Viewport{
	Latitude:  54.7023,
	Longitude: -3.2765,
	Zoom:      5.5,
}

type Aggregate struct {
	Projects   int     `json:"projects"`
	Investment float64 `json:"investment"`
	Jobs       int     `json:"jobs"`
}

type Stats struct {
	TotalProjects   int                  `json:"totalProjects"`
	TotalInvestment float64              `json:"totalInvestment"`
	TotalJobs       int                  `json:"totalJobs"`
	ByRegion        map[string]Aggregate `json:"byRegion"`
	ByIndustry      map[string]Aggregate `json:"byIndustry"`
	ByStatus        map[string]int       `json:"byStatus"`
}
