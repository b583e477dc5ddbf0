package actions

// A list of status codes used inside the application. For more details see: https://httpstatuses.com/

// OK - success
const OK = 200

// Created - resource created
const Created = 201

// BadRequest - sent when a bad request was submitted by the client
const BadRequest = 400

// PaymentRequired - the balance does not cover the requested amount
const PaymentRequired = 402

// NotFound - the resource identified by the given ID does not exist
const NotFound = 404

// Conflict - the request clashes with the current state of the network
const Conflict = 409

// ValidationFailed - the request did not pass field verification
const ValidationFailed = 422

// ServerError - internal server error
const ServerError = 500

// ServiceUnavailable - the request lost a race and can be sent again
const ServiceUnavailable = 503
