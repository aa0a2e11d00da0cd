package domain

import "time"

type Powerstats struct {
	Intelligence int `json:"intelligence"`
	Strength     int `json:"strength"`
	Speed        int `json:"speed"`
	Durability   int `json:"durability"`
	Power        int `json:"power"`
	Combat       int `json:"combat"`
}

type Appearance struct {
	Gender    string   `json:"gender"`
	Race      string   `json:"race"`
	Height    []string `json:"height"`
	Weight    []string `json:"weight"`
	EyeColor  string   `json:"eyeColor"`
	HairColor string   `json:"hairColor"`
}

type Biography struct {
	FullName        string   `json:"fullName"`
	AlterEgos       string   `json:"alterEgos"`
	Aliases         []string `json:"aliases"`
	PlaceOfBirth    string   `json:"placeOfBirth"`
	FirstAppearance string   `json:"firstAppearance"`
	Publisher       string   `json:"publisher"`
	Alignment       string   `json:"alignment"`
}

type Work struct {
	Occupation string `json:"occupation"`
	Base       string `json:"base"`
}

type Connections struct {
	GroupAffiliation string `json:"groupAffiliation"`
	Relatives        string `json:"relatives"`
}

type Images struct {
	XS string `json:"xs"`
	SM string `json:"sm"`
	MD string `json:"md"`
	LG string `json:"lg"`
}

// Hero is one catalog entry. Everything except IsFavorite comes from the
// remote catalog; PowerScore is derived from Powerstats at ingestion.
type Hero struct {
	ID          int         `json:"id"`
	Name        string      `json:"name"`
	Slug        string      `json:"slug"`
	RealName    string      `json:"realName"`
	Powerstats  Powerstats  `json:"powerstats"`
	Appearance  Appearance  `json:"appearance"`
	Biography   Biography   `json:"biography"`
	Work        Work        `json:"work"`
	Connections Connections `json:"connections"`
	Images      Images      `json:"images"`
	PowerScore  float64     `json:"powerScore"`
	IsFavorite  bool        `json:"isFavorite"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// CatalogSnapshot is what a bootstrap or refresh hands back to its caller.
type CatalogSnapshot struct {
	Heroes    []Hero
	Favorites []Hero
	Teams     []Team
	Refreshed bool
}
