package core

// ProvinceID identifies a province in the world graph.
type ProvinceID uint32

// RealmID identifies the political realm owning one or more provinces.
type RealmID uint32

// SphereID identifies a sphere of influence grouping several realms.
type SphereID uint32

// EntityID identifies the actor that originated a piece of information
// (a realm, a character, an army). The engine treats it as opaque.
type EntityID uint32
