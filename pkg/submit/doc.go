// Package submit turns a wizard draft into backend writes.
//
// Two strategies are supported. Atomic sends the whole draft in one multipart
// request that the backend applies transactionally. Decomposed issues the
// dependent calls one stage at a time (article, experience, equipment creates
// and links fanned out in parallel, dataset upload) and leaves already created
// records in place when a later stage fails.
//
// Every failure is reported as a *Failure carrying the stage the wizard should
// return to.
package submit
