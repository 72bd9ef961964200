// Copyright 2016 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"reflect"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

// Client represents a connection to an RPC server.
type Client struct {
	idgen    func() ID // for subscriptions
	isHTTP   bool      // connection type: http, ws or ipc
	services *serviceRegistry

	idCounter atomic.Uint32

	// This function, if non-nil, is called when the connection is lost.
	reconnectFunc reconnectFunc

	// config fields
	batchItemLimit       int
	batchResponseMaxSize int

	// writeConn is used for writing to the connection on the caller's goroutine. It should
	// only be accessed outside of dispatch, with the write lock held. The write lock is
	// taken by sending on reqInit and released by sending on reqSent.
	writeConn jsonWriter

	// for dispatch
	close       chan struct{}
	closing     chan struct{}    // closed when client is quitting
	didClose    chan struct{}    // closed when client quits
	reconnected chan ServerCodec // where write/reconnect sends the new connection
	readOp      chan readOp      // read messages
	readErr     chan error       // errors from read
	reqInit     chan *requestOp  // register response IDs, takes write lock
	reqSent     chan error       // signals write completion, releases write lock
	reqTimeout  chan *requestOp  // removes response IDs when call timeout expires
}

type reconnectFunc func(context.Context) (ServerCodec, error)

// BatchElem is an element in a batch request.
type BatchElem struct {
	Method string
	Args   []interface{}
	// The result is unmarshaled into this field. Result must be set to a
	// non-nil pointer value of the desired type, otherwise the response will be
	// discarded.
	Result interface{}
	// Error is set if the server returns an error for this request, or if
	// unmarshaling into Result fails. It is not set for I/O errors.
	Error error
}

type readOp struct {
	msgs  []*jsonrpcMessage
	batch bool
}

// requestOp represents a pending request. This is used for both batch and non-batch
// requests.
type requestOp struct {
	ids         []json.RawMessage
	err         error
	resp        chan []*jsonrpcMessage // the response goes here
	sub         *ClientSubscription    // set for Subscribe requests.
	hadResponse bool                   // true when the request was responded to
}

// Dial creates a new client for the given URL.
//
// The currently supported URL schemes are "http", "https", "ws" and "wss". If rawurl is a
// file name with no URL scheme, a local socket connection is established using UNIX
// domain sockets on supported platforms and named pipes on Windows.
//
// If you want to further configure the transport, use DialOptions instead of this
// function.
//
// For websocket connections, the origin is set to the local host name.
//
// The client reconnects automatically when the connection is lost.
func Dial(rawurl string) (*Client, error) {
	return DialOptions(context.Background(), rawurl)
}

// DialOptions creates a new RPC client for the given URL. You can supply any of the
// pre-defined client options to configure the underlying transport.
//
// The context is used to cancel or time out the initial connection establishment. It does
// not affect subsequent interactions with the client.
//
// The client reconnects automatically when the connection is lost.
func DialOptions(ctx context.Context, rawurl string, options ...ClientOption) (*Client, error) {
	u, err := url.Parse(rawurl)
	if err != nil {
		return nil, err
	}

	cfg := new(clientConfig)
	for _, opt := range options {
		opt.applyOption(cfg)
	}

	var reconnect reconnectFunc
	switch u.Scheme {
	case "http", "https":
		reconnect = newClientTransportHTTP(rawurl, cfg)
	case "ws", "wss":
		rc, err := newClientTransportWS(rawurl, cfg)
		if err != nil {
			return nil, err
		}
		reconnect = rc
	case "stdio":
		reconnect = newClientTransportIO(os.Stdin, os.Stdout)
	case "":
		reconnect = newClientTransportIPC(rawurl)
	default:
		return nil, fmt.Errorf("no known transport for URL scheme %q", u.Scheme)
	}
	return newClient(ctx, cfg, reconnect)
}

const (
	// Timeouts
	defaultDialTimeout = 10 * time.Second // used when dialing if the context has no deadline

	subscribeTimeout = 5 * time.Second // overall timeout for subscription requests
)

const (
	// Subscriptions are removed when the subscriber has not yet been accepted or
	// when the channel is closed or blocking for longer than this.
	maxClientSubscriptionBuffer = 20000
)

func newClient(initctx context.Context, cfg *clientConfig, connect reconnectFunc) (*Client, error) {
	conn, err := connect(initctx)
	if err != nil {
		return nil, err
	}
	c := initClient(conn, new(serviceRegistry), cfg)
	c.reconnectFunc = connect
	return c, nil
}

func initClient(conn ServerCodec, services *serviceRegistry, cfg *clientConfig) *Client {
	_, isHTTP := conn.(*httpConn)
	c := &Client{
		idgen:                cfg.idgen,
		isHTTP:               isHTTP,
		services:             services,
		writeConn:            conn,
		close:                make(chan struct{}),
		closing:              make(chan struct{}),
		didClose:             make(chan struct{}),
		reconnected:          make(chan ServerCodec),
		readOp:               make(chan readOp),
		readErr:              make(chan error),
		reqInit:              make(chan *requestOp),
		reqSent:              make(chan error, 1),
		reqTimeout:           make(chan *requestOp),
		batchItemLimit:       cfg.batchItemLimit,
		batchResponseMaxSize: cfg.batchResponseLimit,
	}
	if c.idgen == nil {
		c.idgen = randomIDGenerator()
	}
	if !isHTTP {
		go c.dispatch(conn)
	}
	return c
}

// RegisterName creates a service for the given receiver type under the given name. When no
// methods on the given receiver match the criteria to be either a RPC method or a
// subscription an error is returned.
func (c *Client) RegisterName(name string, receiver interface{}) error {
	return c.services.registerName(name, receiver)
}

func (c *Client) nextID() json.RawMessage {
	id := c.idCounter.Add(1)
	return strconv.AppendUint(nil, uint64(id), 10)
}

// SupportedModules calls the rpc_modules method, retrieving the list of
// APIs that are available on the server.
func (c *Client) SupportedModules() (map[string]string, error) {
	var result map[string]string
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := c.CallContext(ctx, &result, "rpc_modules")
	return result, err
}

// Close closes the client, aborting any in-flight requests.
func (c *Client) Close() {
	if c.isHTTP {
		return
	}
	select {
	case c.close <- struct{}{}:
		<-c.didClose
	case <-c.didClose:
	}
}

// SetHeader adds a custom HTTP header to the client's requests. This method only works for
// clients using HTTP, it doesn't have any effect for clients using another transport.
func (c *Client) SetHeader(key, value string) {
	if !c.isHTTP {
		return
	}
	conn := c.writeConn.(*httpConn)
	conn.mu.Lock()
	conn.headers.Set(key, value)
	conn.mu.Unlock()
}

// Call performs a JSON-RPC call with the given arguments and unmarshals into result if no
// error occurred. The result must be a pointer so that package json can unmarshal into it.
// You can also pass nil, in which case the result is ignored.
func (c *Client) Call(result interface{}, method string, args ...interface{}) error {
	ctx := context.Background()
	return c.CallContext(ctx, result, method, args...)
}

// CallContext performs a JSON-RPC call with the given arguments. If the context is
// canceled before the call has successfully returned, CallContext returns immediately.
func (c *Client) CallContext(ctx context.Context, result interface{}, method string, args ...interface{}) error {
	if result != nil && reflect.TypeOf(result).Kind() != reflect.Ptr {
		return fmt.Errorf("call result parameter must be pointer or nil interface: %v", result)
	}
	msg, err := c.newMessage(method, args...)
	if err != nil {
		return err
	}
	op := &requestOp{
		ids:  []json.RawMessage{msg.ID},
		resp: make(chan []*jsonrpcMessage, 1),
	}

	if c.isHTTP {
		err = c.sendHTTP(ctx, op, msg)
	} else {
		err = c.send(ctx, op, msg)
	}
	if err != nil {
		return err
	}

	batchresp, err := op.wait(ctx, c)
	if err != nil {
		return err
	}
	resp := batchresp[0]
	switch {
	case resp.Error != nil:
		return resp.Error
	case len(resp.Result) == 0:
		return ErrNoResult
	default:
		if result == nil {
			return nil
		}
		return json.Unmarshal(resp.Result, result)
	}
}

// BatchCall sends all given requests as a single batch and waits for the server
// to return a response for all of them.
func (c *Client) BatchCall(b []BatchElem) error {
	ctx := context.Background()
	return c.BatchCallContext(ctx, b)
}

// BatchCallContext sends all given requests as a single batch and waits for the server
// to return a response for all of them. The wait duration is bounded by the
// context's deadline.
func (c *Client) BatchCallContext(ctx context.Context, b []BatchElem) error {
	if len(b) == 0 {
		return nil
	}
	var (
		msgs = make([]*jsonrpcMessage, len(b))
		byID = make(map[string]int, len(b))
	)
	op := &requestOp{
		ids:  make([]json.RawMessage, len(b)),
		resp: make(chan []*jsonrpcMessage, 1),
	}
	for i, elem := range b {
		msg, err := c.newMessage(elem.Method, elem.Args...)
		if err != nil {
			return err
		}
		msgs[i] = msg
		op.ids[i] = msg.ID
		byID[string(msg.ID)] = i
	}

	var err error
	if c.isHTTP {
		err = c.sendBatchHTTP(ctx, op, msgs)
	} else {
		err = c.send(ctx, op, msgs)
	}

	if err != nil {
		return err
	}
	batchresp, err := op.wait(ctx, c)
	if err != nil {
		return err
	}

	for n := 0; n < len(b); n++ {
		b[n].Error = ErrMissingBatchResponse
	}
	for _, resp := range batchresp {
		resp := resp
		index, ok := byID[string(resp.ID)]
		if !ok {
			continue
		}
		batchElem := &b[index]
		if resp.Error != nil {
			batchElem.Error = resp.Error
			continue
		}
		if len(resp.Result) == 0 {
			batchElem.Error = ErrNoResult
			continue
		}
		batchElem.Error = json.Unmarshal(resp.Result, batchElem.Result)
	}
	return nil
}

// Notify sends a notification, i.e. a method call that skips the response.
func (c *Client) Notify(ctx context.Context, method string, args ...interface{}) error {
	op := new(requestOp)
	msg, err := c.newMessage(method, args...)
	if err != nil {
		return err
	}
	msg.ID = nil

	if c.isHTTP {
		return c.sendHTTP(ctx, op, msg)
	}
	return c.send(ctx, op, msg)
}

// EthSubscribe registers a subscription under the "eth" namespace.
func (c *Client) EthSubscribe(ctx context.Context, channel interface{}, args ...interface{}) (*ClientSubscription, error) {
	return c.Subscribe(ctx, "eth", channel, args...)
}

// ShhSubscribe registers a subscription under the "shh" namespace.
func (c *Client) ShhSubscribe(ctx context.Context, channel interface{}, args ...interface{}) (*ClientSubscription, error) {
	return c.Subscribe(ctx, "shh", channel, args...)
}

// Subscribe calls the "<namespace>_subscribe" method with the given arguments,
// registering a subscription. Server notifications for the subscription are
// sent to the given channel. The element type of the channel must match the
// expected type of content returned by the subscription.
func (c *Client) Subscribe(ctx context.Context, namespace string, channel interface{}, args ...interface{}) (*ClientSubscription, error) {
	chanVal := reflect.ValueOf(channel)
	if chanVal.Kind() != reflect.Chan || chanVal.Type().Elem().Kind() == reflect.Ptr {
		panic(fmt.Sprintf("channel argument of Subscribe has type %T, need writable channel", channel))
	}
	if chanVal.IsNil() {
		panic("channel given to Subscribe must not be nil")
	}
	if c.isHTTP {
		return nil, ErrNotificationsUnsupported
	}

	msg, err := c.newMessage(namespace+subscribeMethodSuffix, args...)
	if err != nil {
		return nil, err
	}
	op := &requestOp{
		ids:  []json.RawMessage{msg.ID},
		resp: make(chan []*jsonrpcMessage, 1),
		sub:  newClientSubscription(c, namespace, chanVal),
	}

	if err := c.send(ctx, op, msg); err != nil {
		return nil, err
	}
	if _, err := op.wait(ctx, c); err != nil {
		return nil, err
	}
	return op.sub, nil
}

func (c *Client) newMessage(method string, paramsIn ...interface{}) (*jsonrpcMessage, error) {
	msg := &jsonrpcMessage{Version: vsn, ID: c.nextID(), Method: method}
	if paramsIn != nil {
		var err error
		if msg.Params, err = json.Marshal(paramsIn); err != nil {
			return nil, err
		}
	}
	return msg, nil
}

// send registers op with the dispatch loop, then sends msg on the connection.
func (c *Client) send(ctx context.Context, op *requestOp, msg interface{}) error {
	select {
	case c.reqInit <- op:
		err := c.write(ctx, msg, false)
		c.reqSent <- err
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-c.closing:
		return ErrClientQuit
	}
}

func (c *Client) write(ctx context.Context, msg interface{}, retry bool) error {
	if c.writeConn == nil {
		if !retry {
			return errDead
		}
	}
	err := c.writeConn.writeJSON(ctx, msg, false)
	if err != nil {
		c.writeConn = nil
	}
	return err
}

// dispatch is the main loop of the client. It sends read messages to waiting calls
// to dispatch responses and subscription events.
func (c *Client) dispatch(codec ServerCodec) {
	var (
		lastOp   *requestOp
		conn     = codec
		reading  = true
		respWait = make(map[string]*requestOp)
		subs     = make(map[string]*ClientSubscription)
	)
	defer close(c.didClose)
	defer close(c.closing)
	defer func() {
		closeErr := ErrClientQuit
		for _, op := range respWait {
			op.err = closeErr
			op.resp <- nil
		}
		conn.close()
		for _, sub := range subs {
			sub.close(closeErr)
		}
	}()

	go c.read(conn)

	for {
		select {
		case <-c.close:
			return

		case op := <-c.reqInit:
			lastOp = op
			for _, id := range op.ids {
				respWait[string(id)] = op
			}

		case err := <-c.reqSent:
			if err != nil && lastOp != nil {
				for _, id := range lastOp.ids {
					delete(respWait, string(id))
				}
			}

		case op := <-c.reqTimeout:
			for _, id := range op.ids {
				delete(respWait, string(id))
			}

		case batch := <-c.readOp:
			if batch.batch {
				c.handleBatch(batch.msgs, respWait, subs)
			} else {
				c.handleMsg(batch.msgs[0], respWait, subs)
			}

		case err := <-c.readErr:
			for _, op := range respWait {
				op.err = err
				op.resp <- nil
			}
			respWait = make(map[string]*requestOp)
			reading = false

		case newconn := <-c.reconnected:
			if reading {
				conn.close()
				<-c.readErr
			}
			conn = newconn
			reading = true
			go c.read(conn)
		}
	}
}

func (c *Client) handleMsg(msg *jsonrpcMessage, respWait map[string]*requestOp, subs map[string]*ClientSubscription) {
	switch {
	case msg.isNotification():
		c.handleNotification(msg, subs)
	case msg.isResponse():
		if op := respWait[string(msg.ID)]; op != nil {
			c.registerSubscription(msg, op, subs)
		}
		c.handleResponse(msg, respWait)
	default:
	}
}

func (c *Client) handleBatch(msgs []*jsonrpcMessage, respWait map[string]*requestOp, subs map[string]*ClientSubscription) {
	if len(msgs) == 1 {
		msg := msgs[0]
		if msg.isNotification() {
			c.handleNotification(msg, subs)
			return
		}
	}

	resolvedops := make(map[*requestOp][]*jsonrpcMessage)
	for _, msg := range msgs {
		op := respWait[string(msg.ID)]
		if op != nil {
			resolvedops[op] = append(resolvedops[op], msg)
		}
	}
	for op, resp := range resolvedops {
		for _, id := range op.ids {
			delete(respWait, string(id))
		}
		op.resp <- resp
	}
}

func (c *Client) handleResponse(msg *jsonrpcMessage, respWait map[string]*requestOp) {
	op := respWait[string(msg.ID)]
	if op == nil {
		return
	}
	delete(respWait, string(msg.ID))
	op.resp <- []*jsonrpcMessage{msg}
}

// registerSubscription finalizes a subscribe response: it parses the
// server-assigned subscription id out of msg and, on success, starts the
// subscription's forwarding loop.
func (c *Client) registerSubscription(msg *jsonrpcMessage, op *requestOp, subs map[string]*ClientSubscription) {
	if op.sub == nil || msg.Error != nil {
		return
	}
	if err := json.Unmarshal(msg.Result, &op.sub.subid); err != nil {
		return
	}
	subs[op.sub.subid] = op.sub
	go op.sub.run()
}

func (c *Client) handleNotification(msg *jsonrpcMessage, subs map[string]*ClientSubscription) {
	if !strings.HasSuffix(msg.Method, notificationMethodSuffix) {
		return
	}
	var subResult subscriptionResult
	if err := json.Unmarshal(msg.Params, &subResult); err != nil {
		return
	}
	if sub, ok := subs[subResult.ID]; ok {
		sub.deliver(subResult.Result)
	}
}

// read decodes RPC messages from a codec, feeding them into dispatch.
func (c *Client) read(codec ServerCodec) {
	for {
		msgs, batch, err := codec.readBatch()
		if _, ok := err.(*json.SyntaxError); ok {
			_ = codec.writeJSON(context.Background(), errorMessage(&parseError{err.Error()}), true)
		}
		if err != nil {
			c.readErr <- err
			return
		}
		c.readOp <- readOp{msgs, batch}
	}
}

// randomIDGenerator returns a function that generates random IDs.
func randomIDGenerator() func() ID {
	var counter uint64
	return func() ID {
		counter++
		return ID(strconv.FormatUint(counter, 10))
	}
}

var (
	// ErrClientQuit is returned when the client is closed while a request is pending.
	ErrClientQuit = errors.New("rpc client is closed")
	// ErrNoResult is returned by CallContext when the server returns an empty result.
	ErrNoResult = errors.New("no result in JSON-RPC response")
	// ErrMissingBatchResponse is returned when the server did not respond to one of the
	// requests in a batch.
	ErrMissingBatchResponse = errors.New("batch response missing for request")
	// ErrSubscriptionQueueOverflow is returned when a subscription receives more
	// than maxClientSubscriptionBuffer items before the subscriber can keep up.
	ErrSubscriptionQueueOverflow = errors.New("subscription queue overflow")

	errDead = errors.New("rpc client: connection lost")
)

const unsubscribeTimeout = 5 * time.Second

func (op *requestOp) wait(ctx context.Context, c *Client) ([]*jsonrpcMessage, error) {
	select {
	case <-ctx.Done():
		if !c.isHTTP {
			c.reqTimeout <- op
		}
		return nil, ctx.Err()
	case resp := <-op.resp:
		return resp, op.err
	}
}

// newClientTransportIO wraps an input/output file pair (used for "stdio" URLs) as a
// ServerCodec-producing reconnect function.
func newClientTransportIO(in, out *os.File) reconnectFunc {
	return func(_ context.Context) (ServerCodec, error) {
		return NewCodec(&stdioConn{in: in, out: out}), nil
	}
}

// newClientTransportIPC dials a local IPC socket/named pipe and wraps it as a
// ServerCodec-producing reconnect function.
func newClientTransportIPC(endpoint string) reconnectFunc {
	return func(ctx context.Context) (ServerCodec, error) {
		conn, err := newIPCConnection(ctx, endpoint)
		if err != nil {
			return nil, err
		}
		return NewCodec(conn), nil
	}
}

// stdioConn adapts a pair of *os.File (stdin/stdout) to the Conn interface
// required by NewCodec.
type stdioConn struct {
	in  *os.File
	out *os.File
}

func (c *stdioConn) Read(p []byte) (int, error)       { return c.in.Read(p) }
func (c *stdioConn) Write(p []byte) (int, error)      { return c.out.Write(p) }
func (c *stdioConn) Close() error                     { return c.in.Close() }
func (c *stdioConn) SetWriteDeadline(time.Time) error { return nil }
