// Package utils contains small helpers shared by the HTTP layer.
//
// Entity alerts tell a client what happened to an entity without parsing
// the body: a translation key such as "formapplicationApp.formV1.created"
// in X-<app>-alert and the affected id in X-<app>-params. Failures use
// X-<app>-error with "error.<key>" and name the entity in X-<app>-params.
package utils

import "net/http"

// AlertHeader returns the header carrying the alert translation key.
func AlertHeader(appName string) string {
	return "X-" + appName + "-alert"
}

// ErrorHeader returns the header carrying the failure translation key.
func ErrorHeader(appName string) string {
	return "X-" + appName + "-error"
}

// ParamsHeader returns the header carrying the alert parameter.
func ParamsHeader(appName string) string {
	return "X-" + appName + "-params"
}

// Alert builds the headers for an arbitrary alert message.
func Alert(appName, message, param string) http.Header {
	headers := http.Header{}
	headers.Set(AlertHeader(appName), message)
	headers.Set(ParamsHeader(appName), param)
	return headers
}

// EntityCreationAlert is sent with a 201 after an entity is created.
func EntityCreationAlert(appName, entityName, param string) http.Header {
	return Alert(appName, appName+"."+entityName+".created", param)
}

// EntityUpdateAlert is sent after an entity is updated.
func EntityUpdateAlert(appName, entityName, param string) http.Header {
	return Alert(appName, appName+"."+entityName+".updated", param)
}

// EntityDeletionAlert is sent after an entity is deleted.
func EntityDeletionAlert(appName, entityName, param string) http.Header {
	return Alert(appName, appName+"."+entityName+".deleted", param)
}

// FailureAlert is sent with a rejected request, e.g. errorKey "idexists".
func FailureAlert(appName, entityName, errorKey string) http.Header {
	headers := http.Header{}
	headers.Set(ErrorHeader(appName), "error."+errorKey)
	headers.Set(ParamsHeader(appName), entityName)
	return headers
}

// CopyHeaders sets every value of src on dst, replacing existing values.
func CopyHeaders(dst, src http.Header) {
	for key, values := range src {
		dst.Del(key)
		for _, v := range values {
			dst.Add(key, v)
		}
	}
}
