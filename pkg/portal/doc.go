// Package portal is the HTTP client for the dosimetry portal backend. It has
// one method per backend operation and reports every failure as a *Error whose
// Kind separates transport drops, client rejections (4xx), server failures
// (5xx) and undecodable success bodies.
package portal
