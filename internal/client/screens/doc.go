// Package screens holds the view state behind every console screen.
//
// A CrudScreen is one generic list/create/update/delete screen driven by a
// Definition; the catalog in this package declares one Definition per
// backend entity. Cascade models dependent selections such as
// province -> city or type -> size -> brand. Both tag their loads with a
// generation number so a slow response cannot overwrite a newer one.
package screens
