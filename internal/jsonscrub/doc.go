// Package jsonscrub redacts URLs inside JSON documents such as telemetry
// payloads and crash reports.
//
// Every string value is passed through the URL redactor. Object keys,
// numbers and member order are left exactly as they were; the output is
// compact JSON.
package jsonscrub
