// Package grpcapi exposes play sessions over gRPC. Messages are
// google.protobuf.Struct values carrying the same JSON shapes as the HTTP API.
package grpcapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/xtding233/capsule-gacha/internal/gacha"
	"github.com/xtding233/capsule-gacha/internal/reveal"
	"github.com/xtding233/capsule-gacha/internal/session"
	"github.com/xtding233/capsule-gacha/internal/token"
)

const ServiceName = "gacha.v1.GachaService"

// GachaServiceServer is the server API for the gacha service.
type GachaServiceServer interface {
	CreateSession(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetSession(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Pull(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Advance(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Finish(context.Context, *structpb.Struct) (*structpb.Struct, error)
	TopUp(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(GachaServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(method string, call unaryCall) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(GachaServiceServer), ctx, req.(*structpb.Struct))
		}
		if interceptor == nil {
			return handler(ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + method}
		return interceptor(ctx, in, info, handler)
	}
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*GachaServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateSession", Handler: unaryHandler("CreateSession", GachaServiceServer.CreateSession)},
		{MethodName: "GetSession", Handler: unaryHandler("GetSession", GachaServiceServer.GetSession)},
		{MethodName: "Pull", Handler: unaryHandler("Pull", GachaServiceServer.Pull)},
		{MethodName: "Advance", Handler: unaryHandler("Advance", GachaServiceServer.Advance)},
		{MethodName: "Finish", Handler: unaryHandler("Finish", GachaServiceServer.Finish)},
		{MethodName: "TopUp", Handler: unaryHandler("TopUp", GachaServiceServer.TopUp)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "gacha/v1/gacha.proto",
}

// Register attaches srv to a gRPC server.
func Register(r grpc.ServiceRegistrar, srv GachaServiceServer) {
	r.RegisterService(&serviceDesc, srv)
}

type Server struct {
	store *session.Store
}

func NewServer(store *session.Store) *Server {
	return &Server{store: store}
}

func (s *Server) CreateSession(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	sess, err := s.store.Create()
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(sess.Snapshot())
}

func (s *Server) GetSession(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var out *structpb.Struct
	err := s.with(in, func(sess *session.Session) (err error) {
		out, err = toStruct(sess.Snapshot())
		return err
	})
	return out, err
}

func (s *Server) Pull(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	fields := in.GetFields()
	count, err := intField(fields, "count")
	if err != nil {
		return nil, err
	}
	var out *structpb.Struct
	err = s.with(in, func(sess *session.Session) error {
		if v, ok := fields["skip"]; ok {
			sess.SetSkip(v.GetBoolValue())
		}
		outs, err := sess.Pull(count)
		if err != nil {
			return err
		}
		out, err = toStruct(struct {
			Outcomes []gacha.Outcome  `json:"outcomes"`
			Price    int              `json:"price"`
			Session  session.Snapshot `json:"session"`
		}{outs, sess.Price(count), sess.Snapshot()})
		return err
	})
	return out, err
}

func (s *Server) Advance(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var out *structpb.Struct
	err := s.with(in, func(sess *session.Session) error {
		resp := struct {
			Step  *reveal.Step `json:"step,omitempty"`
			State reveal.State `json:"state"`
		}{}
		if step, ok := sess.Advance(); ok {
			resp.Step = &step
		}
		resp.State = sess.RevealState()
		var err error
		out, err = toStruct(resp)
		return err
	})
	return out, err
}

func (s *Server) Finish(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var out *structpb.Struct
	err := s.with(in, func(sess *session.Session) error {
		outs, err := sess.Summary()
		if err != nil {
			return err
		}
		if err := sess.Finish(); err != nil {
			return err
		}
		out, err = toStruct(struct {
			Outcomes []gacha.Outcome  `json:"outcomes"`
			Session  session.Snapshot `json:"session"`
		}{outs, sess.Snapshot()})
		return err
	})
	return out, err
}

func (s *Server) TopUp(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	bundle := in.GetFields()["bundle"].GetStringValue()
	var out *structpb.Struct
	err := s.with(in, func(sess *session.Session) error {
		granted, err := sess.TopUp(bundle)
		if err != nil {
			return err
		}
		out, err = toStruct(struct {
			Granted int              `json:"granted"`
			Session session.Snapshot `json:"session"`
		}{granted, sess.Snapshot()})
		return err
	})
	return out, err
}

func (s *Server) with(in *structpb.Struct, fn func(*session.Session) error) error {
	raw := in.GetFields()["session_id"].GetStringValue()
	id, err := uuid.Parse(raw)
	if err != nil {
		return status.Errorf(codes.InvalidArgument, "invalid session_id %q", raw)
	}
	if err := s.store.With(id, fn); err != nil {
		return toStatus(err)
	}
	return nil
}

// intField reads a whole number from a struct field; fractions, NaN and
// values outside the int32 range are rejected.
func intField(fields map[string]*structpb.Value, name string) (int, error) {
	v := fields[name].GetNumberValue()
	if math.IsNaN(v) || math.Trunc(v) != v || v < math.MinInt32 || v > math.MaxInt32 {
		return 0, status.Errorf(codes.InvalidArgument, "%s must be an integer, got %v", name, v)
	}
	return int(v), nil
}

func toStatus(err error) error {
	if _, ok := status.FromError(err); ok {
		return err
	}
	code := codes.Internal
	switch {
	case errors.Is(err, session.ErrNotFound):
		code = codes.NotFound
	case errors.Is(err, gacha.ErrInvalidArgument):
		code = codes.InvalidArgument
	case errors.Is(err, gacha.ErrInvalidState):
		code = codes.FailedPrecondition
	case errors.Is(err, token.ErrInsufficientFunds):
		code = codes.ResourceExhausted
	}
	return status.Error(code, err.Error())
}

// toStruct round-trips v through JSON so the wire shape matches the HTTP API.
func toStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return out, nil
}

// Client is a thin caller for the gacha service.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Call invokes method with req as the request struct and returns the response fields.
func (c *Client) Call(ctx context.Context, method string, req map[string]any) (map[string]any, error) {
	in, err := structpb.NewStruct(req)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", method, err)
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out); err != nil {
		return nil, err
	}
	return out.AsMap(), nil
}
