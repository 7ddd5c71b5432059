// Package alarm implements the gRPC transport of the alarm clock.
//
// The smartalarm.v1.AlarmClock service is registered by hand from a
// grpc.ServiceDesc and exchanges protobuf well-known types (Struct,
// StringValue, BoolValue, ListValue, Empty), so it needs no generated code.
// Callers identify themselves with actor metadata that the server logs.
package alarm
