// Package gocvcam captures stills through OpenCV. It needs the native
// OpenCV libraries and is only compiled with the gocv build tag.
package gocvcam
