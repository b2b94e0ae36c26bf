// Package draft defines the in-memory aggregate collected by the submission
// wizard: article metadata, one experience, the equipment rows used during the
// experience and the dataset file with its column mapping. A Draft is never
// persisted; it lives until it is submitted or discarded. Rows whose
// identifying field is empty are placeholders and are dropped by the Kept*
// helpers before anything is transmitted.
package draft
