package directions

import (
	"context"
	"fmt"
	"math"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/pixelthreat/internal/faults"
	"github.com/danielpatrickdp/pixelthreat/internal/threat"
)

const (
	serviceName      = "pixelthreat.margins.v1.MarginService"
	directionsMethod = "/" + serviceName + "/Directions"
)

// #region client

// Client talks to a remote margin service.
type Client struct {
	conn *grpc.ClientConn
	cc   grpc.ClientConnInterface
}

// NewClient creates a plaintext gRPC client for addr. The connection is
// established lazily on the first call.
func NewClient(addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("directions: connect to margin service at %s: %w", addr, err)
	}
	return &Client{conn: conn, cc: conn}, nil
}

// NewClientConn wraps an existing connection. Close is then a no-op.
func NewClientConn(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Close closes the connection created by NewClient.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// Fetch asks the service for the direction set of the given dimension.
func (c *Client) Fetch(ctx context.Context, dimension int) ([]threat.Direction, error) {
	const op = "directions.fetch"

	req, err := structpb.NewStruct(map[string]any{"dimension": dimension})
	if err != nil {
		return nil, fmt.Errorf("directions: build request: %w", err)
	}
	resp := &structpb.Struct{}
	if err := c.cc.Invoke(ctx, directionsMethod, req, resp); err != nil {
		switch status.Code(err) {
		case codes.InvalidArgument:
			return nil, faults.Wrap(op, faults.KindDimensionMismatch, err)
		case codes.NotFound:
			return nil, faults.Wrap(op, faults.KindEmptyDirectionSet, err)
		}
		return nil, fmt.Errorf("directions: fetch from margin service: %w", err)
	}

	dirs, err := decodeDirections(resp)
	if err != nil {
		return nil, faults.Wrap(op, faults.KindInvalidDirection, err)
	}
	if err := checkDimension(op, dirs, dimension); err != nil {
		return nil, err
	}
	return dirs, nil
}

// Directions implements Source.
func (c *Client) Directions(ctx context.Context, dim int) ([]threat.Direction, error) {
	return c.Fetch(ctx, dim)
}

// #endregion client

// #region server

// MarginServer is the server side of the margin service.
type MarginServer interface {
	Directions(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

var marginServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*MarginServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Directions", Handler: directionsHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "pixelthreat/margins/v1/margins.proto",
}

func directionsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MarginServer).Directions(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: directionsMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(MarginServer).Directions(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// RegisterMarginServer registers srv on s.
func RegisterMarginServer(s grpc.ServiceRegistrar, srv MarginServer) {
	s.RegisterService(&marginServiceDesc, srv)
}

// RegisterStaticService serves a fixed direction set on s.
func RegisterStaticService(s grpc.ServiceRegistrar, dirs []threat.Direction) {
	RegisterMarginServer(s, &staticServer{dirs: dirs})
}

type staticServer struct {
	dirs []threat.Direction
}

func (s *staticServer) Directions(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if len(s.dirs) == 0 {
		return nil, status.Error(codes.NotFound, "no directions configured")
	}
	dim := 0
	if v, ok := req.GetFields()["dimension"]; ok {
		dim = int(v.GetNumberValue())
	}
	if dim > 0 {
		for _, d := range s.dirs {
			if len(d.Vector) != dim {
				return nil, status.Errorf(codes.InvalidArgument,
					"direction %s has %d components, requested %d", d.Name, len(d.Vector), dim)
			}
		}
	}
	return encodeDirections(s.dirs)
}

// #endregion server

// #region wire

func encodeDirections(dirs []threat.Direction) (*structpb.Struct, error) {
	list := make([]any, len(dirs))
	for i, d := range dirs {
		vec := make([]any, len(d.Vector))
		for j, x := range d.Vector {
			vec[j] = x
		}
		list[i] = map[string]any{
			"name":   d.Name,
			"margin": d.Margin,
			"vector": vec,
		}
	}
	return structpb.NewStruct(map[string]any{"directions": list})
}

func decodeDirections(s *structpb.Struct) ([]threat.Direction, error) {
	raw := s.GetFields()["directions"].GetListValue().GetValues()
	dirs := make([]threat.Direction, 0, len(raw))
	for i, item := range raw {
		fields := item.GetStructValue().GetFields()
		if fields == nil {
			return nil, fmt.Errorf("direction %d is not an object", i)
		}
		vals := fields["vector"].GetListValue().GetValues()
		vec := make([]float64, len(vals))
		for j, x := range vals {
			if _, ok := x.GetKind().(*structpb.Value_NumberValue); !ok {
				return nil, fmt.Errorf("direction %d component %d is not a number", i, j)
			}
			vec[j] = x.GetNumberValue()
			if math.IsNaN(vec[j]) || math.IsInf(vec[j], 0) {
				return nil, fmt.Errorf("direction %d component %d is %v", i, j, vec[j])
			}
		}
		dirs = append(dirs, threat.Direction{
			Name:   fields["name"].GetStringValue(),
			Margin: fields["margin"].GetNumberValue(),
			Vector: vec,
		})
	}
	return dirs, nil
}

// #endregion wire
