package grpccodec

import (
	"context"

	"google.golang.org/grpc"
)

// Unary describes one method of a hand-written service whose request and
// response are plain structs carried by the JSON codec. S is the server
// interface the method is dispatched on.
func Unary[S any, Req any, Resp any](service, method string, call func(srv S, ctx context.Context, req *Req) (*Resp, error)) grpc.MethodDesc {
	fullMethod := "/" + service + "/" + method
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(S), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			return interceptor(ctx, in, info, func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(S), ctx, req.(*Req))
			})
		},
	}
}

// Invoke calls a JSON method over conn.
func Invoke(ctx context.Context, conn grpc.ClientConnInterface, fullMethod string, in, out interface{}, opts ...grpc.CallOption) error {
	return conn.Invoke(ctx, fullMethod, in, out, append(opts, grpc.CallContentSubtype(Name))...)
}
